package pairer

import (
	"github.com/cliffdoyle/chess-pairing-engine/internal/bye"
	"github.com/cliffdoyle/chess-pairing-engine/internal/colorassign"
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// SingleElimination implements the standard 1-v-N seeded knockout bracket
//: round 1 is seeded so the top seeds draw byes to fill the
// bracket out to a power of two, and every later round pairs the previous
// round's winners in bracket order.
type SingleElimination struct{}

// Pair implements Generator. Winners of earlier rounds are derived from
// t.Pairings rather than from standings, since elimination advancement is
// bracket-structural, not score-based.
func (g *SingleElimination) Pair(t *domain.Tournament, section string, round int, standings []*domain.PlayerState) (*domain.SectionPairings, error) {
	sp := &domain.SectionPairings{Section: section, ByeCounts: make(map[domain.ByeType]int)}

	seeded := seedOrder(standings)
	size := nextPowerOfTwo(len(seeded))
	slots := make([]*domain.PlayerState, size)
	for slot, seed := range seedPositions(size) {
		if seed < len(seeded) {
			slots[slot] = seeded[seed]
		}
	}

	participants := roundParticipants(t, section, round, slots)

	var pairings []*domain.Pairing
	for i := 0; i+1 < len(participants); i += 2 {
		a, b := participants[i], participants[i+1]
		switch {
		case a == nil && b == nil:
			continue
		case a == nil:
			pairings = append(pairings, bye.Pairing(t, section, round, b, domain.ByePairingAllocated))
			sp.ByeCounts[domain.ByePairingAllocated]++
		case b == nil:
			pairings = append(pairings, bye.Pairing(t, section, round, a, domain.ByePairingAllocated))
			sp.ByeCounts[domain.ByePairingAllocated]++
		default:
			white, black := colorassign.Assign(a, b, i/2)
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

// roundParticipants resolves which players occupy each bracket slot at
// round, by recursively resolving earlier rounds' winners from t.Pairings.
// A nil entry is an unfilled bye slot.
func roundParticipants(t *domain.Tournament, section string, round int, slots []*domain.PlayerState) []*domain.PlayerState {
	if round <= 1 {
		return slots
	}
	prev := roundParticipants(t, section, round-1, slots)

	next := make([]*domain.PlayerState, 0, len(prev)/2)
	for i := 0; i+1 < len(prev); i += 2 {
		a, b := prev[i], prev[i+1]
		switch {
		case a == nil && b == nil:
			next = append(next, nil)
		case a == nil:
			next = append(next, b)
		case b == nil:
			next = append(next, a)
		default:
			next = append(next, eliminationWinner(t, section, round-1, a, b))
		}
	}
	return next
}

func eliminationWinner(t *domain.Tournament, section string, round int, a, b *domain.PlayerState) *domain.PlayerState {
	for _, pr := range t.Pairings {
		if pr.Section != section || pr.Round != round || pr.Result == nil {
			continue
		}
		matches := (pr.WhiteID == a.Player.ID && pr.BlackID == b.Player.ID) || (pr.WhiteID == b.Player.ID && pr.BlackID == a.Player.ID)
		if !matches {
			continue
		}
		if pr.Result.WhiteScore > pr.Result.BlackScore {
			return playerStateByID(a, b, pr.WhiteID)
		}
		return playerStateByID(a, b, pr.BlackID)
	}
	return nil
}

func playerStateByID(a, b *domain.PlayerState, id string) *domain.PlayerState {
	if a.Player.ID == id {
		return a
	}
	return b
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	size := 1
	for size < n {
		size *= 2
	}
	return size
}

// seedPositions returns, for a bracket of the given (power-of-two) size, the
// 0-based seed index that belongs at each bracket slot — the standard
// recursive "1 vs N, 2 vs N-1" sports-bracket seeding.
func seedPositions(size int) []int {
	seeds := []int{0}
	for len(seeds) < size {
		n := len(seeds)
		next := make([]int, 2*n)
		for i, s := range seeds {
			next[2*i] = s
			next[2*i+1] = 2*n - 1 - s
		}
		seeds = next
	}
	return seeds
}
