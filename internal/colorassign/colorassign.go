// Package colorassign implements the color-preference cascade used to decide
// which side of a proposed pairing plays white. It operates on
// two already-matched PlayerStates and never changes who is paired with whom.
package colorassign

import (
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Assign returns (white, black) for the pair (a, b), applying the cascade in
// order: absolute preference, strong preference, mild (due-color)
// preference, and the Dutch board-index parity default. Each step only fires
// if the previous steps left the question open; a same-color conflict at the
// absolute, strong or mild step is settled by resolveConflict, whose last
// tie-break is the player id.
func Assign(a, b *domain.PlayerState, boardIndex int) (white, black *domain.PlayerState) {
	aAbs, aAbsOK := a.HasAbsolutePreference()
	bAbs, bAbsOK := b.HasAbsolutePreference()

	switch {
	case aAbsOK && bAbsOK:
		// Both have an absolute preference. If they don't conflict, honor
		// both; if they do, resolveConflict decides: fewer games played with
		// the wanted color, then color imbalance, then the player-id
		// tie-break as the final fallback.
		if aAbs != bAbs {
			return pick(a, b, aAbs == domain.White)
		}
		return resolveConflict(a, b, aAbs, boardIndex)
	case aAbsOK:
		return pick(a, b, aAbs == domain.White)
	case bAbsOK:
		return pick(a, b, bAbs != domain.White)
	}

	aStr, aStrOK := a.HasStrongPreference()
	bStr, bStrOK := b.HasStrongPreference()
	switch {
	case aStrOK && bStrOK:
		if aStr != bStr {
			return pick(a, b, aStr == domain.White)
		}
		return resolveConflict(a, b, aStr, boardIndex)
	case aStrOK:
		return pick(a, b, aStr == domain.White)
	case bStrOK:
		return pick(a, b, bStr != domain.White)
	}

	aDue, bDue := a.DueColor(), b.DueColor()
	switch {
	case aDue != domain.NoColor && bDue != domain.NoColor && aDue != bDue:
		return pick(a, b, aDue == domain.White)
	case aDue != domain.NoColor && bDue == domain.NoColor:
		return pick(a, b, aDue == domain.White)
	case bDue != domain.NoColor && aDue == domain.NoColor:
		return pick(a, b, bDue != domain.White)
	case aDue != domain.NoColor && bDue != domain.NoColor && aDue == bDue:
		return resolveConflict(a, b, aDue, boardIndex)
	}

	// Neither player has any color history to draw on (round 1, or both
	// just came off a bye): fall back to the Dutch default: the upper-half (S1, i.e. a) player takes white on the
	// bracket's 1st, 3rd, ... pairing (boardIndex even, 0-based) and black
	// on the 2nd, 4th, ...; a is always the S1-side player for every caller
	// that has a meaningful S1/S2 split (the Swiss pairer), so no further
	// tie-break is needed here.
	return pick(a, b, boardIndex%2 == 0)
}

// pick returns (white, black) for (a, b) given whether a wants white.
func pick(a, b *domain.PlayerState, aWantsWhite bool) (white, black *domain.PlayerState) {
	if aWantsWhite {
		return a, b
	}
	return b, a
}

// resolveConflict breaks a tie between two players who both want the same
// color (or have no preference at all): fewer total games played with that
// color wins it, then the lower color imbalance, then ascending player id —
// deterministic in all cases.
func resolveConflict(a, b *domain.PlayerState, wanted domain.Color, boardIndex int) (white, black *domain.PlayerState) {
	if wanted != domain.NoColor {
		aCount, bCount := colorCount(a, wanted), colorCount(b, wanted)
		if aCount != bCount {
			return pick(a, b, aCount < bCount == (wanted == domain.White))
		}
	}
	if a.ColorImbalance != b.ColorImbalance {
		// The player with the larger imbalance toward black gets white.
		return pick(a, b, a.ColorImbalance < b.ColorImbalance)
	}
	if a.Player.ID < b.Player.ID {
		return a, b
	}
	return b, a
}

func colorCount(ps *domain.PlayerState, c domain.Color) int {
	n := 0
	for _, played := range ps.ColorsPlayed {
		if played == c {
			n++
		}
	}
	return n
}
