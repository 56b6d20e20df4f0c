package pairer

import (
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/accel"
	"github.com/cliffdoyle/chess-pairing-engine/internal/bye"
	"github.com/cliffdoyle/chess-pairing-engine/internal/colorassign"
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// SwissDutch implements the FIDE/USCF Dutch system: bye
// partitioning, acceleration, score-bracket construction, S1/S2 pairing with
// bounded transposition search, resection and floating.
type SwissDutch struct{}

// Pair implements Generator.
func (g *SwissDutch) Pair(t *domain.Tournament, section string, round int, standings []*domain.PlayerState) (*domain.SectionPairings, error) {
	sp := &domain.SectionPairings{Section: section, ByeCounts: make(map[domain.ByeType]int)}

	accel.Apply(standings, round, t.AccelerationSettings)

	var pool []*domain.PlayerState
	var pairings []*domain.Pairing
	for _, ps := range standings {
		switch {
		case ps.Player.Status == domain.StatusInactive:
			pairings = append(pairings, bye.Pairing(t, section, round, ps, domain.ByeInactiveZero))
			sp.ByeCounts[domain.ByeInactiveZero]++
		case ps.Player.HasRequestedBye(round):
			pairings = append(pairings, bye.Pairing(t, section, round, ps, domain.ByeRequestedHalf))
			sp.ByeCounts[domain.ByeRequestedHalf]++
		default:
			pool = append(pool, ps)
		}
	}

	sortByEffectiveScore(pool)

	if len(pool)%2 == 1 {
		brackets := bracketize(pool)
		lowest := brackets[len(brackets)-1]
		result := bye.SelectPairingBye(lowest.Players, t.ByeSettings.AvoidUnratedDropping)
		pairings = append(pairings, bye.Pairing(t, section, round, result.Player, domain.ByePairingAllocated))
		sp.ByeCounts[domain.ByePairingAllocated]++
		if result.Forced {
			sp.RepeatByeForced = true
		}
		pool = removePlayer(pool, result.Player)
	}

	brackets := bracketize(pool)
	var downfloaters []*domain.PlayerState
	for _, br := range brackets {
		candidates := append(append([]*domain.PlayerState(nil), downfloaters...), br.Players...)
		sortByEffectiveScore(candidates)

		pairs, remaining := pairBracket(candidates, t.TranspositionLimit)
		for i, pr := range pairs {
			white, black := colorassign.Assign(pr[0], pr[1], i)
			pairings = append(pairings, &domain.Pairing{
				Round:        round,
				Section:      section,
				TournamentID: t.ID,
				WhiteID:      white.Player.ID,
				BlackID:      black.Player.ID,
			})
		}
		downfloaters = remaining
	}

	if len(downfloaters) > 0 {
		ids := make([]string, 0, len(downfloaters))
		for _, ps := range downfloaters {
			ids = append(ids, ps.Player.ID)
		}
		return nil, &domain.UnpairableRoundError{
			Section:        section,
			BracketScore:   downfloaters[0].EffectiveScore(),
			BracketPlayers: ids,
			Reason:         "no legal assignment remained after transpositions, resection and floating",
		}
	}

	sp.Pairings = pairings
	numberBoards(sp.Pairings)
	return sp, nil
}

func sortByEffectiveScore(players []*domain.PlayerState) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.EffectiveScore() != b.EffectiveScore() {
			return a.EffectiveScore() > b.EffectiveScore()
		}
		if a.Player.Rating != b.Player.Rating {
			return a.Player.Rating > b.Player.Rating
		}
		if a.Player.Name != b.Player.Name {
			return a.Player.Name < b.Player.Name
		}
		return a.Player.ID < b.Player.ID
	})
}

func bracketize(players []*domain.PlayerState) []*domain.ScoreBracket {
	var brackets []*domain.ScoreBracket
	for _, ps := range players {
		sc := ps.EffectiveScore()
		if n := len(brackets); n > 0 && brackets[n-1].Score == sc {
			brackets[n-1].Players = append(brackets[n-1].Players, ps)
		} else {
			brackets = append(brackets, &domain.ScoreBracket{Score: sc, Players: []*domain.PlayerState{ps}})
		}
	}
	return brackets
}

func removePlayer(players []*domain.PlayerState, target *domain.PlayerState) []*domain.PlayerState {
	out := make([]*domain.PlayerState, 0, len(players)-1)
	for _, ps := range players {
		if ps != target {
			out = append(out, ps)
		}
	}
	return out
}

// pairBracket pairs one score bracket (already sorted by effective score,
// then rating, descending) by the Dutch S1/S2 rule, falling back to
// transposition search, resection and finally floating the lowest-rated
// player down when no legal assignment exists.
func pairBracket(players []*domain.PlayerState, limit int) (pairs [][2]*domain.PlayerState, floaters []*domain.PlayerState) {
	n := len(players)
	if n == 0 {
		return nil, nil
	}
	if n == 1 {
		return nil, players
	}

	s1n := n / 2
	s1 := append([]*domain.PlayerState(nil), players[:s1n]...)
	s2 := append([]*domain.PlayerState(nil), players[s1n:]...)

	var tail *domain.PlayerState
	if n%2 == 1 {
		tail = s2[len(s2)-1]
		s2 = s2[:len(s2)-1]
	}

	assignment, ok := searchAssignment(s1, s2, limit)
	if !ok {
		assignment, ok = resectionSearch(s1, s2, limit)
	}
	if !ok {
		// Float the lowest-rated player still in the search pool (s1+s2)
		// and retry with the rest; this is the last resort before declaring
		// the round unpairable. When n is odd, tail is already
		// players[n-1] and must not be floated a second time here.
		searchPool := players
		if tail != nil {
			searchPool = players[:n-1]
		}
		floatCandidate := searchPool[len(searchPool)-1]
		rest := removePlayer(searchPool, floatCandidate)
		restPairs, restFloats := pairBracket(rest, limit)
		floats := append([]*domain.PlayerState{floatCandidate}, restFloats...)
		if tail != nil {
			floats = append(floats, tail)
		}
		return restPairs, floats
	}

	if tail != nil {
		floaters = append(floaters, tail)
	}
	return assignment, floaters
}

// searchAssignment looks for a perfect matching between s1 and s2 where no
// pair has already played each other, preferring the identity (Dutch
// position-i-to-position-i) assignment and exploring transpositions outward
// from there. The search is bounded: when |s2| <= limit it is exhaustive;
// above that it explores a fixed, generous attempt budget in place of a
// full matching solver, which is sufficient in practice because legal
// assignments are common once a bracket is this large.
func searchAssignment(s1, s2 []*domain.PlayerState, limit int) ([][2]*domain.PlayerState, bool) {
	n := len(s1)
	if n == 0 {
		return nil, true
	}

	budget := transpositionBudget(n, limit)
	used := make([]bool, len(s2))
	pairs := make([][2]*domain.PlayerState, n)
	attempts := 0

	var backtrack func(i int) bool
	backtrack = func(i int) bool {
		if i == n {
			return true
		}
		attempts++
		if attempts > budget {
			return false
		}
		for _, j := range candidateOrder(i, len(s2)) {
			if used[j] || !validPair(s1[i], s2[j]) {
				continue
			}
			used[j] = true
			pairs[i] = [2]*domain.PlayerState{s1[i], s2[j]}
			if backtrack(i + 1) {
				return true
			}
			used[j] = false
		}
		return false
	}

	if backtrack(0) {
		return pairs, true
	}
	return nil, false
}

// resectionSearch exchanges one member each of s1 and s2, working inward
// from the bracket boundary, and retries the assignment search after each
// exchange.
func resectionSearch(s1, s2 []*domain.PlayerState, limit int) ([][2]*domain.PlayerState, bool) {
	n := len(s1)
	for k := 0; k < n; k++ {
		ns1 := append([]*domain.PlayerState(nil), s1...)
		ns2 := append([]*domain.PlayerState(nil), s2...)
		ns1[n-1-k], ns2[k] = ns2[k], ns1[n-1-k]
		if pairs, ok := searchAssignment(ns1, ns2, limit); ok {
			return pairs, true
		}
	}
	return nil, false
}

func validPair(a, b *domain.PlayerState) bool {
	if a == b || a.Player.ID == b.Player.ID {
		return false
	}
	return !a.HasPlayed(b.Player.ID)
}

// candidateOrder returns s2 indices in order of increasing distance from i,
// i itself first: the Dutch default, then the nearest transpositions.
func candidateOrder(i, n int) []int {
	order := make([]int, 0, n)
	order = append(order, i)
	for d := 1; d < n; d++ {
		if i+d < n {
			order = append(order, i+d)
		}
		if i-d >= 0 {
			order = append(order, i-d)
		}
	}
	return order
}

func transpositionBudget(n, limit int) int {
	if limit <= 0 {
		limit = 8
	}
	if n <= limit {
		// Every node of the full search tree: sum over depth k of n!/(n-k)!.
		total, f := 0, 1
		for k := 0; k < n; k++ {
			total += f
			f *= n - k
		}
		return total
	}
	return 5000
}
