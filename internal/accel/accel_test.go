package accel

import (
	"testing"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

func standingsOf(n int) []*domain.PlayerState {
	out := make([]*domain.PlayerState, n)
	for i := 0; i < n; i++ {
		out[i] = &domain.PlayerState{Player: &domain.Player{Rating: 2000 - i*10}}
	}
	return out
}

func TestApplyStandardRound1And2(t *testing.T) {
	standings := standingsOf(8)
	settings := domain.AccelerationSettings{Enabled: true, Type: domain.AccelStandard}

	Apply(standings, 1, settings)
	for i, ps := range standings {
		want := 0.0
		if i < 4 {
			want = 1.0
		}
		if ps.AccelerationBonus != want {
			t.Fatalf("round 1 index %d: want bonus %v got %v", i, want, ps.AccelerationBonus)
		}
	}

	Apply(standings, 2, settings)
	for i, ps := range standings {
		want := 0.0
		if i < 4 {
			want = 0.5
		}
		if ps.AccelerationBonus != want {
			t.Fatalf("round 2 index %d: want bonus %v got %v", i, want, ps.AccelerationBonus)
		}
	}

	Apply(standings, 3, settings)
	for i, ps := range standings {
		if ps.AccelerationBonus != 0 {
			t.Fatalf("round 3 index %d: standard acceleration must stop, got %v", i, ps.AccelerationBonus)
		}
	}
}

func TestApplyDisabledClearsBonus(t *testing.T) {
	standings := standingsOf(4)
	standings[0].AccelerationBonus = 1.0
	Apply(standings, 1, domain.AccelerationSettings{Enabled: false})
	if standings[0].AccelerationBonus != 0 {
		t.Fatalf("disabled acceleration must clear any stale bonus")
	}
}

func TestApplyAllRoundsIsConstantEveryRound(t *testing.T) {
	standings := standingsOf(4)
	settings := domain.AccelerationSettings{Enabled: true, Type: domain.AccelAllRounds, BreakPoint: 0.5}

	for _, round := range []int{1, 2, 7, 20} {
		Apply(standings, round, settings)
		if standings[0].AccelerationBonus != 0.5 {
			t.Fatalf("round %d: expected constant 0.5 bonus for top half, got %v", round, standings[0].AccelerationBonus)
		}
	}
}

func TestApplyAddedScoreRespectsRoundsLimit(t *testing.T) {
	standings := standingsOf(4)
	settings := domain.AccelerationSettings{Enabled: true, Type: domain.AccelAddedScore, Rounds: 2, BreakPoint: 1.0}

	Apply(standings, 2, settings)
	if standings[0].AccelerationBonus != 1.0 {
		t.Fatalf("round 2 should still be accelerated, got %v", standings[0].AccelerationBonus)
	}

	Apply(standings, 3, settings)
	if standings[0].AccelerationBonus != 0 {
		t.Fatalf("round 3 exceeds configured rounds, bonus should be 0, got %v", standings[0].AccelerationBonus)
	}
}

func TestApplySixthsRound1And2(t *testing.T) {
	standings := standingsOf(12)
	settings := domain.AccelerationSettings{Enabled: true, Type: domain.AccelSixths}

	Apply(standings, 1, settings)
	// top sixth of 12 = 2 players get +1
	for i, ps := range standings {
		want := 0.0
		if i < 2 {
			want = 1.0
		}
		if ps.AccelerationBonus != want {
			t.Fatalf("round1 index %d: want %v got %v", i, want, ps.AccelerationBonus)
		}
	}

	Apply(standings, 2, settings)
	// top third of 12 = 4 players get +0.5
	for i, ps := range standings {
		want := 0.0
		if i < 4 {
			want = 0.5
		}
		if ps.AccelerationBonus != want {
			t.Fatalf("round2 index %d: want %v got %v", i, want, ps.AccelerationBonus)
		}
	}
}

func TestApplyNeverTouchesRealPoints(t *testing.T) {
	standings := standingsOf(4)
	standings[0].Points = 2.0
	Apply(standings, 1, domain.AccelerationSettings{Enabled: true, Type: domain.AccelStandard})
	if standings[0].Points != 2.0 {
		t.Fatalf("acceleration must never mutate real Points, got %v", standings[0].Points)
	}
	if standings[0].EffectiveScore() != 3.0 {
		t.Fatalf("effective score should be points+bonus = 3.0, got %v", standings[0].EffectiveScore())
	}
}
