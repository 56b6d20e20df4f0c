// Package validator enforces the structural and rule invariants every
// produced pairing set must satisfy before a caller is allowed
// to persist it.
package validator

import (
	"fmt"
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Report is the outcome of ValidatePairings. A non-empty Errors means the
// pairing set must not be committed; Warnings never block emission.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the report carries no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// largeRatingGap is the threshold above which a pairing is flagged as a
// warning.
const largeRatingGap = 400

// ValidatePairings checks one section's pairings against the structural
// invariants a valid pairing set must satisfy, plus prior-round history in
// prevPairings for the repeat-encounter check.
func ValidatePairings(section *domain.SectionPairings, activePlayers []*domain.Player, prevPairings []*domain.Pairing) *Report {
	r := &Report{}

	seenPlayer := make(map[string]int)
	seenPair := make(map[string]bool)
	for _, pr := range prevPairings {
		if pr.IsBye || pr.BlackID == "" {
			continue
		}
		seenPair[pairKey(pr.WhiteID, pr.BlackID)] = true
	}
	colorHistory := buildColorHistory(prevPairings)

	var tournamentID, roundSection string
	round := -1
	boards := make([]int, 0, len(section.Pairings))

	for _, pr := range section.Pairings {
		if tournamentID == "" {
			tournamentID = pr.TournamentID
			roundSection = pr.Section
			round = pr.Round
		}
		if pr.TournamentID != tournamentID || pr.Section != roundSection || pr.Round != round {
			r.Errors = append(r.Errors, fmt.Sprintf("pairing board %d has mismatched round/section/tournamentId", pr.Board))
		}

		seenPlayer[pr.WhiteID]++
		if pr.WhiteID == pr.BlackID && pr.WhiteID != "" {
			r.Errors = append(r.Errors, fmt.Sprintf("board %d pairs %s against themselves", pr.Board, pr.WhiteID))
		}

		if pr.BlackID == "" {
			if pr.ByeType == domain.ByeNone {
				r.Errors = append(r.Errors, fmt.Sprintf("board %d is a bye with no byeType", pr.Board))
			}
			if !pr.IsBye {
				r.Errors = append(r.Errors, fmt.Sprintf("board %d has no black side but isBye is false", pr.Board))
			}
		} else {
			seenPlayer[pr.BlackID]++
			if pr.ByeType != domain.ByeNone {
				r.Errors = append(r.Errors, fmt.Sprintf("board %d has a black side but also a byeType", pr.Board))
			}
			if seenPair[pairKey(pr.WhiteID, pr.BlackID)] {
				r.Errors = append(r.Errors, fmt.Sprintf("board %d repeats a prior encounter between %s and %s", pr.Board, pr.WhiteID, pr.BlackID))
			}
			seenPair[pairKey(pr.WhiteID, pr.BlackID)] = true

			if conflict, color := colorAbsoluteConflict(colorHistory, pr.WhiteID, pr.BlackID); conflict {
				r.Errors = append(r.Errors, fmt.Sprintf("board %d pairs %s and %s who both carry an absolute preference for %s", pr.Board, pr.WhiteID, pr.BlackID, color))
			}

			wp, bp := playerByID(activePlayers, pr.WhiteID), playerByID(activePlayers, pr.BlackID)
			if wp != nil && bp != nil {
				gap := wp.Rating - bp.Rating
				if gap < 0 {
					gap = -gap
				}
				if gap > largeRatingGap {
					r.Warnings = append(r.Warnings, fmt.Sprintf("board %d has a rating gap of %d (%s vs %s)", pr.Board, gap, wp.Name, bp.Name))
				}
			}
		}

		boards = append(boards, pr.Board)
	}

	for _, p := range activePlayers {
		if p.Status == domain.StatusWithdrawn {
			continue
		}
		if seenPlayer[p.ID] == 0 {
			r.Errors = append(r.Errors, fmt.Sprintf("player %s is missing from the round", p.ID))
		} else if seenPlayer[p.ID] > 1 {
			r.Errors = append(r.Errors, fmt.Sprintf("player %s appears in more than one pairing", p.ID))
		}
	}

	sort.Ints(boards)
	for i, b := range boards {
		if b != i+1 {
			r.Errors = append(r.Errors, fmt.Sprintf("board numbers are not a contiguous 1..N sequence (got %v)", boards))
			break
		}
	}

	return r
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func playerByID(players []*domain.Player, id string) *domain.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// buildColorHistory reconstructs each player's color imbalance and streak
// from prevPairings in round order, so a loaded pairing set (not only a
// freshly generated one) can still be checked for players who both carry
// a conflicting absolute color preference.
func buildColorHistory(prevPairings []*domain.Pairing) map[string]*domain.PlayerState {
	out := make(map[string]*domain.PlayerState)
	get := func(id string) *domain.PlayerState {
		ps, ok := out[id]
		if !ok {
			ps = &domain.PlayerState{Player: &domain.Player{ID: id}}
			out[id] = ps
		}
		return ps
	}

	sorted := append([]*domain.Pairing(nil), prevPairings...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Round < sorted[j].Round })

	for _, pr := range sorted {
		if pr.IsBye || pr.BlackID == "" {
			continue
		}
		w, b := get(pr.WhiteID), get(pr.BlackID)
		w.ColorsPlayed = append(w.ColorsPlayed, domain.White)
		w.ColorImbalance++
		b.ColorsPlayed = append(b.ColorsPlayed, domain.Black)
		b.ColorImbalance--
	}
	return out
}

// colorAbsoluteConflict reports whether white and black both hold an
// absolute color preference for the same color, which would make
// honoring both impossible. A player with no recorded history has no
// preference and never conflicts.
func colorAbsoluteConflict(history map[string]*domain.PlayerState, whiteID, blackID string) (bool, domain.Color) {
	w, wok := history[whiteID]
	b, bok := history[blackID]
	if !wok || !bok {
		return false, domain.NoColor
	}
	wColor, wHas := w.HasAbsolutePreference()
	bColor, bHas := b.HasAbsolutePreference()
	if wHas && bHas && wColor == bColor {
		return true, wColor
	}
	return false, domain.NoColor
}
