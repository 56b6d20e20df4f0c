package pairer

import (
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// TeamSwiss implements team-level Swiss pairing plus per-board pairing
// inside each match. Team scores are loaded fresh from
// completed match results before every call — no in-memory score cache is
// kept across calls.
type TeamSwiss struct{}

// Pair implements Generator. standings is unused here: team-Swiss pairs at
// team granularity from t.Teams, not the per-player PlayerState standings
// the other variants consume. Board colors follow the fixed alternation
// pattern of boardColorTeam1White; colorassign is not consulted.
func (g *TeamSwiss) Pair(t *domain.Tournament, section string, round int, standings []*domain.PlayerState) (*domain.SectionPairings, error) {
	sp := &domain.SectionPairings{Section: section, ByeCounts: make(map[domain.ByeType]int)}

	byID := make(map[string]*domain.PlayerState, len(standings))
	for _, ps := range standings {
		byID[ps.Player.ID] = ps
	}

	teamStates := loadTeamStates(t, section)
	if len(teamStates) == 0 {
		return sp, nil
	}

	sortTeamsByScore(teamStates)

	var pool []*domain.TeamState
	var byeTeam *domain.TeamState
	pool = append(pool, teamStates...)
	if len(pool)%2 == 1 {
		byeTeam = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}

	matches, err := pairTeams(pool, t.TranspositionLimit)
	if err != nil {
		return nil, &domain.UnpairableRoundError{
			Section: section,
			Reason:  "no legal team pairing remained after transposition search: " + err.Error(),
		}
	}

	var pairings []*domain.Pairing
	for matchIdx, m := range matches {
		team1, team2 := m[0], m[1]
		boardPairings := pairBoards(t, section, round, team1, team2, byID, matchIdx)
		pairings = append(pairings, boardPairings...)
	}

	if byeTeam != nil {
		for _, pid := range byeTeam.Team.Boards {
			ps := byID[pid]
			if ps == nil {
				continue
			}
			pairings = append(pairings, teamBye(t, section, round, ps))
			sp.ByeCounts[domain.ByePairingAllocated]++
		}
	}

	sp.Pairings = pairings
	numberBoards(sp.Pairings)
	return sp, nil
}

// loadTeamStates computes each team's match points and game points from
// completed matches in t.Pairings, rather than trusting any cached total.
func loadTeamStates(t *domain.Tournament, section string) []*domain.TeamState {
	byTeamID := make(map[string]*domain.Team)
	for _, tm := range t.Teams {
		if tm.Section != section {
			continue
		}
		byTeamID[tm.ID] = tm
	}
	if len(byTeamID) == 0 {
		return nil
	}

	playerTeam := make(map[string]string, len(byTeamID)*4)
	for id, tm := range byTeamID {
		for _, pid := range tm.Boards {
			playerTeam[pid] = id
		}
	}

	states := make(map[string]*domain.TeamState, len(byTeamID))
	for id, tm := range byTeamID {
		states[id] = &domain.TeamState{Team: tm, Opponents: make(map[string]bool)}
	}

	// Group past pairings into matches by (round, pair of teams), then
	// compute game points per team and derive match points (1/0.5/0) from
	// which team won more boards.
	type matchKey struct {
		round int
		a, b  string
	}
	gamePts := make(map[matchKey][2]float64)

	for _, pr := range t.Pairings {
		if pr.Section != section || pr.IsBye || pr.Result == nil {
			continue
		}
		wTeam, bTeam := playerTeam[pr.WhiteID], playerTeam[pr.BlackID]
		if wTeam == "" || bTeam == "" || wTeam == bTeam {
			continue
		}
		a, b := wTeam, bTeam
		flip := false
		if a > b {
			a, b, flip = b, a, true
		}
		k := matchKey{round: pr.Round, a: a, b: b}
		entry := gamePts[k]
		if !flip {
			entry[0] += pr.Result.WhiteScore
			entry[1] += pr.Result.BlackScore
		} else {
			entry[0] += pr.Result.BlackScore
			entry[1] += pr.Result.WhiteScore
		}
		gamePts[k] = entry
	}

	for k, pts := range gamePts {
		teamA, teamB := states[k.a], states[k.b]
		if teamA == nil || teamB == nil {
			continue
		}
		teamA.GamePoints += pts[0]
		teamB.GamePoints += pts[1]
		teamA.Opponents[k.b] = true
		teamB.Opponents[k.a] = true
		switch {
		case pts[0] > pts[1]:
			teamA.MatchPoints += 1
		case pts[0] < pts[1]:
			teamB.MatchPoints += 1
		default:
			teamA.MatchPoints += 0.5
			teamB.MatchPoints += 0.5
		}
	}

	out := make([]*domain.TeamState, 0, len(states))
	for _, ts := range states {
		out = append(out, ts)
	}
	return out
}

func sortTeamsByScore(teams []*domain.TeamState) {
	sort.SliceStable(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if a.MatchPoints != b.MatchPoints {
			return a.MatchPoints > b.MatchPoints
		}
		if a.GamePoints != b.GamePoints {
			return a.GamePoints > b.GamePoints
		}
		return a.Team.ID < b.Team.ID
	})
}

// pairTeams applies the same Dutch S1/S2 + transposition approach as the
// player-level Swiss pairer (internal/pairer/swiss.go), but at team
// granularity and without score-bracket floating: teams are pooled in one
// bracket per call since team counts are typically small.
func pairTeams(teams []*domain.TeamState, limit int) ([][2]*domain.TeamState, error) {
	n := len(teams)
	if n == 0 {
		return nil, nil
	}
	s1n := n / 2
	s1 := teams[:s1n]
	s2 := teams[s1n:]

	used := make([]bool, len(s2))
	assignment := make([][2]*domain.TeamState, s1n)

	var backtrack func(i int) bool
	backtrack = func(i int) bool {
		if i == s1n {
			return true
		}
		// search outward from the identity position
		for _, j := range candidateOrder(i, len(s2)) {
			if used[j] || teams[i].Opponents[s2[j].Team.ID] {
				continue
			}
			used[j] = true
			assignment[i] = [2]*domain.TeamState{s1[i], s2[j]}
			if backtrack(i + 1) {
				return true
			}
			used[j] = false
		}
		return false
	}

	if !backtrack(0) {
		// fall back to naive identity pairing ignoring repeats rather than
		// returning an error from here. Boards that meet again are
		// reported by the validator as repeat-encounter errors, so
		// engine.GeneratePairings rejects such a set.
		for i := 0; i < s1n; i++ {
			assignment[i] = [2]*domain.TeamState{s1[i], s2[i]}
		}
	}
	return assignment, nil
}

// pairBoards pairs the two teams' boards 1..k against each other and
// assigns colors per the alternating match pattern: team1
// gets white on odd boards in odd rounds and even boards in even rounds,
// the inverse pattern for team2, producing balanced colors per player
// across rounds.
func pairBoards(t *domain.Tournament, section string, round int, team1, team2 *domain.TeamState, byID map[string]*domain.PlayerState, matchIdx int) []*domain.Pairing {
	n := len(team1.Team.Boards)
	if len(team2.Team.Boards) < n {
		n = len(team2.Team.Boards)
	}

	var pairings []*domain.Pairing
	for board := 0; board < n; board++ {
		p1 := byID[team1.Team.Boards[board]]
		p2 := byID[team2.Team.Boards[board]]
		if p1 == nil || p2 == nil {
			continue
		}

		team1White := boardColorTeam1White(round, board+1)
		var white, black *domain.PlayerState
		if team1White {
			white, black = p1, p2
		} else {
			white, black = p2, p1
		}

		whiteTeamID, blackTeamID := team2.Team.ID, team1.Team.ID
		if team1White {
			whiteTeamID, blackTeamID = team1.Team.ID, team2.Team.ID
		}

		pairings = append(pairings, &domain.Pairing{
			Round:        round,
			Section:      section,
			TournamentID: t.ID,
			WhiteID:      white.Player.ID,
			BlackID:      black.Player.ID,
			WhiteTeamID:  whiteTeamID,
			BlackTeamID:  blackTeamID,
			MatchBoard:   board + 1,
		})
	}
	return pairings
}

// boardColorTeam1White implements the board-color alternation pattern:
// team1 has white on odd boards in odd rounds and on even boards in
// even rounds.
func boardColorTeam1White(round, board int) bool {
	oddRound := round%2 == 1
	oddBoard := board%2 == 1
	return oddRound == oddBoard
}

func teamBye(t *domain.Tournament, section string, round int, ps *domain.PlayerState) *domain.Pairing {
	return &domain.Pairing{
		Round:        round,
		Section:      section,
		TournamentID: t.ID,
		WhiteID:      ps.Player.ID,
		IsBye:        true,
		ByeType:      domain.ByePairingAllocated,
	}
}
