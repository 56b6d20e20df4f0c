package colorassign

import (
	"testing"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

func newState(id string, rating int) *domain.PlayerState {
	return &domain.PlayerState{
		Player:    &domain.Player{ID: id, Rating: rating},
		Opponents: map[string]bool{},
	}
}

func TestAssignNoHistoryDutchDefault(t *testing.T) {
	// With no color history, boards 1 and 3 (even boardIndex, 0-based) give
	// the S1 player (a) white; boards 2 and 4 give the S2 player (b) white.
	a := newState("A", 2200)
	b := newState("E", 1950)

	white, black := Assign(a, b, 0)
	if white != a || black != b {
		t.Fatalf("board index 0: expected a(S1) white, got white=%s", white.Player.ID)
	}

	white, black = Assign(a, b, 1)
	if white != b || black != a {
		t.Fatalf("board index 1: expected b(S2) white, got white=%s", white.Player.ID)
	}
}

func TestAssignAbsolutePreferenceWins(t *testing.T) {
	a := newState("A", 2000)
	a.ColorImbalance = 2 // absolute preference for Black
	b := newState("B", 1900)

	white, black := Assign(a, b, 0)
	if black != a || white != b {
		t.Fatalf("expected absolute preference to win: a should be black, got white=%s", white.Player.ID)
	}
}

func TestAssignStrongOutranksMild(t *testing.T) {
	a := newState("A", 2000)
	a.ColorImbalance = 1 // strong preference for Black
	b := newState("B", 1900)
	b.ColorsPlayed = []domain.Color{domain.Black} // mild preference for White

	white, black := Assign(a, b, 0)
	if black != a || white != b {
		t.Fatalf("strong should outrank mild: expected a black b white, got white=%s", white.Player.ID)
	}
}

func TestAssignConflictingAbsolutePreferencesLargerImbalanceWins(t *testing.T) {
	a := newState("A", 2000)
	a.ColorImbalance = 2 // wants black
	b := newState("B", 1900)
	b.ColorsPlayed = []domain.Color{domain.White, domain.White}
	b.ColorImbalance = 3 // also wants black, bigger imbalance

	white, black := Assign(a, b, 0)
	if black != b || white != a {
		t.Fatalf("player with larger imbalance should get the due color (black); got black=%s", black.Player.ID)
	}
}

func TestAssignIsDeterministic(t *testing.T) {
	a := newState("A", 2000)
	b := newState("B", 1900)

	w1, b1 := Assign(a, b, 3)
	w2, b2 := Assign(a, b, 3)
	if w1 != w2 || b1 != b2 {
		t.Fatalf("Assign must be deterministic for equal inputs")
	}
}
