package pairer

import (
	"github.com/cliffdoyle/chess-pairing-engine/internal/bye"
	"github.com/cliffdoyle/chess-pairing-engine/internal/colorassign"
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// quadTable encodes, one row per round, the canonical USCF quad table
// as 0-based indices into a 4-player group, sorted by rating
// descending: R1 (1,4)(2,3); R2 (3,1)(4,2); R3 (1,2)(3,4).
var quadTable = [3][2][2]int{
	{{0, 3}, {1, 2}},
	{{2, 0}, {3, 1}},
	{{0, 1}, {2, 3}},
}

// Quad implements the groups-of-four round-robin variant.
type Quad struct{}

// Pair implements Generator.
func (g *Quad) Pair(t *domain.Tournament, section string, round int, standings []*domain.PlayerState) (*domain.SectionPairings, error) {
	sp := &domain.SectionPairings{Section: section, ByeCounts: make(map[domain.ByeType]int)}

	groupSize := t.GroupSize
	if groupSize <= 0 {
		groupSize = 4
	}

	seeded := seedOrder(standings)
	groups := chunk(seeded, groupSize)
	if t.CrossGroupPairings && len(groups) >= 2 {
		last := groups[len(groups)-1]
		if len(last) < groupSize {
			prev := groups[len(groups)-2]
			groups = groups[:len(groups)-2]
			groups = append(groups, append(append([]*domain.PlayerState(nil), prev...), last...))
		}
	}

	var pairings []*domain.Pairing
	for _, grp := range groups {
		groupPairings, err := pairQuadGroup(t, section, round, grp, groupSize)
		if err != nil {
			return nil, err
		}
		pairings = append(pairings, groupPairings...)
		for _, pr := range groupPairings {
			if pr.IsBye {
				sp.ByeCounts[pr.ByeType]++
			}
		}
	}

	sp.Pairings = pairings
	numberBoards(sp.Pairings)
	return sp, nil
}

func pairQuadGroup(t *domain.Tournament, section string, round int, grp []*domain.PlayerState, groupSize int) ([]*domain.Pairing, error) {
	if len(grp) < groupSize {
		return pairIncompleteQuad(t, section, round, grp)
	}
	if round < 1 || round > len(quadTable) {
		return nil, &domain.ConfigurationError{Field: "round", Reason: "quad format only defines 3 rounds per group"}
	}

	var pairings []*domain.Pairing
	for _, idx := range quadTable[round-1] {
		a, b := grp[idx[0]], grp[idx[1]]
		white, black := colorassign.Assign(a, b, idx[0])
		pairings = append(pairings, &domain.Pairing{
			Round:        round,
			Section:      section,
			TournamentID: t.ID,
			WhiteID:      white.Player.ID,
			BlackID:      black.Player.ID,
		})
	}
	return pairings, nil
}

// pairIncompleteQuad degrades a group smaller than groupSize to a
// round-robin via the same fixed-player circle method round-robin uses,
// giving a pairing-allocated bye to whoever draws the empty seat.
func pairIncompleteQuad(t *domain.Tournament, section string, round int, grp []*domain.PlayerState) ([]*domain.Pairing, error) {
	n := len(grp)
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return []*domain.Pairing{bye.Pairing(t, section, round, grp[0], domain.ByePairingAllocated)}, nil
	}

	seats := append([]*domain.PlayerState(nil), grp...)
	hasGhost := n%2 == 1
	if hasGhost {
		seats = append(seats, nil)
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
		a, b := seats[indices[i]], seats[indices[n-1-i]]
		switch {
		case a == nil:
			pairings = append(pairings, bye.Pairing(t, section, round, b, domain.ByePairingAllocated))
		case b == nil:
			pairings = append(pairings, bye.Pairing(t, section, round, a, domain.ByePairingAllocated))
		default:
			white, black := colorassign.Assign(a, b, i)
			pairings = append(pairings, &domain.Pairing{
				Round:        round,
				Section:      section,
				TournamentID: t.ID,
				WhiteID:      white.Player.ID,
				BlackID:      black.Player.ID,
			})
		}
	}
	return pairings, nil
}

func chunk(players []*domain.PlayerState, size int) [][]*domain.PlayerState {
	var groups [][]*domain.PlayerState
	for i := 0; i < len(players); i += size {
		end := i + size
		if end > len(players) {
			end = len(players)
		}
		groups = append(groups, players[i:end])
	}
	return groups
}
