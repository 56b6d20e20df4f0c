package pairer

import (
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/bye"
	"github.com/cliffdoyle/chess-pairing-engine/internal/colorassign"
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// RoundRobin implements the Berger circle-method schedule: one
// player is fixed, the rest rotate around it each round. An odd field is
// padded with a ghost seat; whoever draws the ghost receives a
// pairing-allocated bye for that round.
type RoundRobin struct{}

// Pair implements Generator. standings here derive the fixed seed order (by
// rating, descending); who meets whom depends on the schedule, not the
// current score, so it is the same regardless of how many results have been
// reported. Colors come from colorassign and so depend on each player's
// color history.
func (g *RoundRobin) Pair(t *domain.Tournament, section string, round int, standings []*domain.PlayerState) (*domain.SectionPairings, error) {
	sp := &domain.SectionPairings{Section: section, ByeCounts: make(map[domain.ByeType]int)}

	seeded := seedOrder(standings)
	n := len(seeded)
	if n == 0 {
		return sp, nil
	}

	hasGhost := n%2 == 1
	if hasGhost {
		seeded = append(seeded, nil)
		n++
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for r := 1; r < round; r++ {
		rotateSeats(indices)
	}

	var pairings []*domain.Pairing
	for i := 0; i < n/2; i++ {
		home := seeded[indices[i]]
		away := seeded[indices[n-1-i]]

		switch {
		case home == nil:
			pairings = append(pairings, bye.Pairing(t, section, round, away, domain.ByePairingAllocated))
			sp.ByeCounts[domain.ByePairingAllocated]++
		case away == nil:
			pairings = append(pairings, bye.Pairing(t, section, round, home, domain.ByePairingAllocated))
			sp.ByeCounts[domain.ByePairingAllocated]++
		default:
			white, black := colorassign.Assign(home, away, i)
			pairings = append(pairings, &domain.Pairing{
				Round:        round,
				Section:      section,
				TournamentID: t.ID,
				WhiteID:      white.Player.ID,
				BlackID:      black.Player.ID,
			})
		}
	}

	sp.Pairings = pairings
	numberBoards(sp.Pairings)
	return sp, nil
}

// seedOrder is the fixed entry order used by schedule-based variants
// (round-robin, quad): rating descending, then ascending id.
func seedOrder(standings []*domain.PlayerState) []*domain.PlayerState {
	out := append([]*domain.PlayerState(nil), standings...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Player.Rating != b.Player.Rating {
			return a.Player.Rating > b.Player.Rating
		}
		return a.Player.ID < b.Player.ID
	})
	return out
}

// rotateSeats rotates all seats except the first, implementing one step of
// the Berger circle method.
func rotateSeats(indices []int) {
	n := len(indices)
	if n <= 2 {
		return
	}
	last := indices[n-1]
	for i := n - 1; i > 1; i-- {
		indices[i] = indices[i-1]
	}
	indices[1] = last
}
