// Package snapshot builds per-section PlayerState slices from a Tournament
// snapshot. The builder is pure: the same snapshot and
// roundToPair always produce the same PlayerState set, ordered canonically.
package snapshot

import (
	"fmt"
	"log"
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Build assembles the PlayerState list for one section, using only pairings
// with Round < roundToPair. Withdrawn players are excluded entirely.
// Ordering is canonical: (-points, -rating, name), ties broken later by id
// where it matters to determinism.
func Build(t *domain.Tournament, section string, roundToPair int) ([]*domain.PlayerState, error) {
	byID := make(map[string]*domain.Player)
	var sectionPlayers []*domain.Player
	for _, p := range t.Players {
		if p.Section != section {
			continue
		}
		byID[p.ID] = p
		if p.Status == domain.StatusWithdrawn {
			continue
		}
		sectionPlayers = append(sectionPlayers, p)
	}

	states := make(map[string]*domain.PlayerState, len(sectionPlayers))
	for _, p := range sectionPlayers {
		states[p.ID] = &domain.PlayerState{
			Player:    p,
			Opponents: make(map[string]bool),
		}
	}

	// Gather relevant past pairings in round order so derived sequences
	// (colorsPlayed, cumulative score) come out chronological.
	var past []*domain.Pairing
	for _, pr := range t.Pairings {
		if pr.Section != section || pr.Round >= roundToPair {
			continue
		}
		past = append(past, pr)
	}
	sort.SliceStable(past, func(i, j int) bool { return past[i].Round < past[j].Round })

	for _, pr := range past {
		if err := applyPairing(states, byID, t.Scoring, t.ByeSettings, pr); err != nil {
			return nil, err
		}
	}

	computeFloatHistory(states)

	out := make([]*domain.PlayerState, 0, len(states))
	for _, ps := range states {
		out = append(out, ps)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Player.Rating != b.Player.Rating {
			return a.Player.Rating > b.Player.Rating
		}
		if a.Player.Name != b.Player.Name {
			return a.Player.Name < b.Player.Name
		}
		return a.Player.ID < b.Player.ID
	})
	return out, nil
}

func applyPairing(states map[string]*domain.PlayerState, byID map[string]*domain.Player, scoring domain.Scoring, byeSettings domain.ByeSettings, pr *domain.Pairing) error {
	white := states[pr.WhiteID]
	if white == nil {
		if _, known := byID[pr.WhiteID]; !known {
			log.Printf("[snapshot] pairing round %d board %d references unknown white player %q; treating as missing", pr.Round, pr.Board, pr.WhiteID)
		}
		return nil
	}

	if pr.IsBye {
		return applyBye(white, scoring, byeSettings, pr)
	}

	black := states[pr.BlackID]
	if black == nil {
		log.Printf("[snapshot] pairing round %d board %d references unknown black player %q; treating white's opponent as null", pr.Round, pr.Board, pr.BlackID)
		return nil
	}

	if pr.WhiteID == pr.BlackID {
		return &domain.InvariantViolationError{Check: "no-self-pairing", Details: fmt.Sprintf("round %d board %d pairs %s with themselves", pr.Round, pr.Board, pr.WhiteID)}
	}

	white.Opponents[black.Player.ID] = true
	black.Opponents[white.Player.ID] = true

	var whitePts, blackPts float64
	var whiteResult, blackResult domain.GameResult
	if pr.Result != nil {
		whitePts, blackPts = pr.Result.WhiteScore, pr.Result.BlackScore
		switch {
		case whitePts > blackPts:
			whiteResult, blackResult = domain.ResultWin, domain.ResultLoss
		case whitePts < blackPts:
			whiteResult, blackResult = domain.ResultLoss, domain.ResultWin
		default:
			whiteResult, blackResult = domain.ResultDraw, domain.ResultDraw
		}
	} else {
		whiteResult, blackResult = domain.ResultUnplayedForfeit, domain.ResultUnplayedForfeit
	}

	white.Points += whitePts
	black.Points += blackPts

	appendGame(white, pr.Round, black.Player.ID, domain.White, whiteResult, whitePts)
	appendGame(black, pr.Round, white.Player.ID, domain.Black, blackResult, blackPts)

	return nil
}

func applyBye(ps *domain.PlayerState, scoring domain.Scoring, byeSettings domain.ByeSettings, pr *domain.Pairing) error {
	var pts float64
	var result domain.GameResult
	switch pr.ByeType {
	case domain.ByeRequestedHalf:
		pts, result = scoring.RequestedBye, domain.ResultByeHalf
	case domain.ByeInactiveZero:
		pts, result = scoring.Inactive, domain.ResultByeZero
	case domain.ByePairingAllocated:
		pts, result = scoring.PairingBye, domain.ResultByeFull
		if !byeSettings.FullPointPairingBye {
			pts = 0.5
		}
		ps.HadPairingAllocatedBye = true
	default:
		return &domain.InvariantViolationError{Check: "bye-type-present", Details: fmt.Sprintf("round %d board %d is a bye with no byeType", pr.Round, pr.Board)}
	}
	ps.Points += pts
	appendGame(ps, pr.Round, "", domain.NoColor, result, pts)
	return nil
}

// appendGame records one past game and updates the derived sequences. Bye
// games do not affect colorsPlayed / colorImbalance / the color streak.
func appendGame(ps *domain.PlayerState, round int, opponentID string, color domain.Color, result domain.GameResult, pts float64) {
	ps.PastGames = append(ps.PastGames, domain.PastGame{
		Round:         round,
		OpponentID:    opponentID,
		Color:         color,
		Result:        result,
		PointsAwarded: pts,
	})

	if color == domain.NoColor {
		return
	}
	ps.ColorsPlayed = append(ps.ColorsPlayed, color)
	if color == domain.White {
		ps.ColorImbalance++
	} else {
		ps.ColorImbalance--
	}
}

// computeFloatHistory derives an approximate float mark for every past
// played game: a player is considered downfloated in a round if their
// opponent's cumulative score going into that round was lower than their
// own, and upfloated if it was higher. Historical score-bracket membership
// isn't persisted, so this is the same score-comparison heuristic real
// Swiss software falls back to when reconstructing float history from a
// result log rather than from its own live bracket state.
func computeFloatHistory(states map[string]*domain.PlayerState) {
	// scoreBeforeRound[id][round] = cumulative points that player had
	// immediately before that round was played.
	scoreBeforeRound := make(map[string]map[int]float64, len(states))
	for id, ps := range states {
		byRound := make(map[int]float64, len(ps.PastGames))
		var running float64
		for _, g := range ps.PastGames {
			byRound[g.Round] = running
			running += g.PointsAwarded
		}
		scoreBeforeRound[id] = byRound
	}

	for id, ps := range states {
		for _, g := range ps.PastGames {
			if g.OpponentID == "" {
				ps.FloatHistory = append(ps.FloatHistory, domain.FloatNone)
				continue
			}
			myScore := scoreBeforeRound[id][g.Round]
			oppScore := scoreBeforeRound[g.OpponentID][g.Round]
			switch {
			case oppScore < myScore:
				ps.FloatHistory = append(ps.FloatHistory, domain.FloatDown)
			case oppScore > myScore:
				ps.FloatHistory = append(ps.FloatHistory, domain.FloatUp)
			default:
				ps.FloatHistory = append(ps.FloatHistory, domain.FloatNone)
			}
		}
	}
}
