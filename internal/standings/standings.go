// Package standings computes the standings table and its tiebreakers
// from the same PlayerState snapshot the pairer consumes.
package standings

import (
	"math"
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Row is one player's line in the standings table.
type Row struct {
	Player     *domain.Player
	Points     float64
	Tiebreaks  map[domain.TiebreakID]float64
	Rank       int
}

// Table is the full computed standings for one section.
type Table struct {
	Section string
	Rows    []*Row
}

// precision is the number of decimal places tiebreak values are rounded to
// before comparison, so repeated sorts of the same snapshot never drift due
// to floating-point summation order.
const precision = 3

func canon(v float64) float64 {
	scale := math.Pow(10, precision)
	return math.Round(v*scale) / scale
}

// Compute builds a Table for the given players, ordered by points then by
// tiebreakOrder lexicographically, then ascending player id.
func Compute(states []*domain.PlayerState, tiebreakOrder []domain.TiebreakID) *Table {
	byID := make(map[string]*domain.PlayerState, len(states))
	for _, ps := range states {
		byID[ps.Player.ID] = ps
	}

	rows := make([]*Row, 0, len(states))
	for _, ps := range states {
		row := &Row{
			Player:    ps.Player,
			Points:    canon(ps.Points),
			Tiebreaks: make(map[domain.TiebreakID]float64, len(tiebreakOrder)),
		}
		for _, tb := range tiebreakOrder {
			row.Tiebreaks[tb] = canon(compute(tb, ps, byID))
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		for _, tb := range tiebreakOrder {
			if tb == domain.TiebreakDirectEncounter {
				switch DirectEncounter(byID[a.Player.ID], b.Player.ID) {
				case DirectEncounterWin:
					return true
				case DirectEncounterLoss:
					return false
				}
				continue
			}
			av, bv := a.Tiebreaks[tb], b.Tiebreaks[tb]
			if av != bv {
				return av > bv
			}
		}
		return a.Player.ID < b.Player.ID
	})

	for i, row := range rows {
		row.Rank = i + 1
	}

	return &Table{Rows: rows}
}

func compute(tb domain.TiebreakID, ps *domain.PlayerState, byID map[string]*domain.PlayerState) float64 {
	switch tb {
	case domain.TiebreakBuchholz:
		return buchholz(ps, byID, false)
	case domain.TiebreakBuchholzCut1:
		return buchholz(ps, byID, true)
	case domain.TiebreakModifiedBuchholz:
		return modifiedBuchholz(ps, byID)
	case domain.TiebreakSonnebornBerger:
		return sonnebornBerger(ps, byID)
	case domain.TiebreakCumulative:
		return cumulative(ps)
	case domain.TiebreakPerformanceRating:
		return performanceRating(ps, byID)
	case domain.TiebreakDirectEncounter:
		// Direct-encounter has no single scalar value in isolation; Compute
		// resolves it pairwise among players tied up to that point. We
		// expose it here as 0 so it never silently reorders players outside
		// that pairwise comparison.
		return 0
	default:
		return 0
	}
}

// opponentPoints returns the points total of every opponent faced, in the
// order played, skipping bye rounds (no opponent).
func opponentPoints(ps *domain.PlayerState, byID map[string]*domain.PlayerState) []float64 {
	var out []float64
	for _, g := range ps.PastGames {
		if g.OpponentID == "" {
			continue
		}
		opp, ok := byID[g.OpponentID]
		if !ok {
			continue
		}
		out = append(out, opp.Points)
	}
	return out
}

func buchholz(ps *domain.PlayerState, byID map[string]*domain.PlayerState, cut1 bool) float64 {
	pts := opponentPoints(ps, byID)
	var sum float64
	for _, p := range pts {
		sum += p
	}
	if cut1 && len(pts) > 0 {
		min := pts[0]
		for _, p := range pts[1:] {
			if p < min {
				min = p
			}
		}
		sum -= min
	}
	return sum
}

func modifiedBuchholz(ps *domain.PlayerState, byID map[string]*domain.PlayerState) float64 {
	return buchholz(ps, byID, true)
}

func sonnebornBerger(ps *domain.PlayerState, byID map[string]*domain.PlayerState) float64 {
	var sum float64
	for _, g := range ps.PastGames {
		if g.OpponentID == "" {
			continue
		}
		opp, ok := byID[g.OpponentID]
		if !ok {
			continue
		}
		var weight float64
		switch g.Result {
		case domain.ResultWin:
			weight = 1.0
		case domain.ResultDraw:
			weight = 0.5
		default:
			weight = 0
		}
		sum += opp.Points * weight
	}
	return sum
}

func cumulative(ps *domain.PlayerState) float64 {
	var running, sum float64
	for _, g := range ps.PastGames {
		running += g.PointsAwarded
		sum += running
	}
	return sum
}

func performanceRating(ps *domain.PlayerState, byID map[string]*domain.PlayerState) float64 {
	var totalRating float64
	games := 0
	for _, g := range ps.PastGames {
		if g.OpponentID == "" {
			continue
		}
		opp, ok := byID[g.OpponentID]
		if !ok {
			continue
		}
		totalRating += float64(opp.Player.Rating)
		games++
	}
	if games == 0 {
		return float64(ps.Player.Rating)
	}
	avgOpp := totalRating / float64(games)
	return avgOpp + 400*(ps.Points/float64(games)-0.5)
}

// DirectEncounterResult is the pairwise outcome Compute uses to break a tie
// at the position of TiebreakDirectEncounter in the configured tiebreakOrder.
type DirectEncounterResult int

const (
	DirectEncounterUnplayed DirectEncounterResult = iota
	DirectEncounterWin
	DirectEncounterDraw
	DirectEncounterLoss
)

// DirectEncounter reports how a played, from the perspective of a, against
// b, or DirectEncounterUnplayed if they never met.
func DirectEncounter(a *domain.PlayerState, bID string) DirectEncounterResult {
	for _, g := range a.PastGames {
		if g.OpponentID != bID {
			continue
		}
		switch g.Result {
		case domain.ResultWin:
			return DirectEncounterWin
		case domain.ResultDraw:
			return DirectEncounterDraw
		case domain.ResultLoss:
			return DirectEncounterLoss
		}
	}
	return DirectEncounterUnplayed
}
