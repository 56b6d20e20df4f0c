// Package bye allocates the pairing-allocated bye when a section's active
// pool is odd, and classifies every bye a section hands out into the
// taxonomy the rest of the engine relies on.
package bye

import (
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Result is the outcome of SelectPairingBye.
type Result struct {
	Player  *domain.PlayerState
	Forced  bool // eligibility pool was reset (every candidate already had one)
}

// SelectPairingBye picks which player, from the lowest-scoring bracket of an
// odd-sized pool, receives the pairing-allocated full-point bye. Candidates
// that have already had one are skipped unless every candidate has, in which
// case the pool resets to everyone and Forced is set so the caller can record
// RepeatByeForced.
//
// Within the eligible pool, the lowest-rated player is chosen; when
// avoidUnratedDropping is true, unrated players (Rating == 0) are preferred
// last (they drop to the bottom of the candidate order rather than being
// the first picked), so a data-entry gap doesn't cost an unrated player
// their game. Ties are broken by ascending player id.
func SelectPairingBye(lowestBracket []*domain.PlayerState, avoidUnratedDropping bool) *Result {
	if len(lowestBracket) == 0 {
		return nil
	}

	eligible := filterEligible(lowestBracket)
	forced := false
	if len(eligible) == 0 {
		eligible = append([]*domain.PlayerState(nil), lowestBracket...)
		forced = true
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if avoidUnratedDropping {
			aUnrated, bUnrated := a.Player.Rating == 0, b.Player.Rating == 0
			if aUnrated != bUnrated {
				return !aUnrated // rated players sort first, i.e. get picked first
			}
		}
		if a.Player.Rating != b.Player.Rating {
			return a.Player.Rating < b.Player.Rating
		}
		return a.Player.ID < b.Player.ID
	})

	return &Result{Player: eligible[0], Forced: forced}
}

func filterEligible(pool []*domain.PlayerState) []*domain.PlayerState {
	var out []*domain.PlayerState
	for _, ps := range pool {
		if !ps.HadPairingAllocatedBye {
			out = append(out, ps)
		}
	}
	return out
}

// Pairing builds the bye pairing slot for ps: whiteId set to the player,
// blackId empty, isBye true, byeType as classified by the caller.
func Pairing(t *domain.Tournament, section string, round int, ps *domain.PlayerState, byeType domain.ByeType) *domain.Pairing {
	if byeType == domain.ByePairingAllocated {
		ps.HadPairingAllocatedBye = true
	}
	return &domain.Pairing{
		Round:        round,
		Section:      section,
		TournamentID: t.ID,
		WhiteID:      ps.Player.ID,
		IsBye:        true,
		ByeType:      byeType,
	}
}
