// Package accel implements the acceleration schemes that give a round-local
// virtual score bonus to top-half players in early rounds, so strong fields
// separate faster. The bonus only ever affects bracketing; it
// never touches a player's real Points.
package accel

import (
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Apply sets AccelerationBonus on every player in standings (already sorted
// canonically by the snapshot builder) for the given round, according to
// settings. standings must be in the same order the snapshot builder
// produces: descending by points, then rating, then name, then id.
func Apply(standings []*domain.PlayerState, round int, settings domain.AccelerationSettings) {
	for _, ps := range standings {
		ps.AccelerationBonus = 0
	}
	if !settings.Enabled || settings.Type == domain.AccelNone {
		return
	}

	topHalf := (len(standings) + 1) / 2 // ceil(n/2)

	switch settings.Type {
	case domain.AccelStandard:
		// Top half gets +1 in round 1, +0.5 in round 2, 0 after.
		var bonus float64
		switch round {
		case 1:
			bonus = 1.0
		case 2:
			bonus = 0.5
		default:
			return
		}
		for i := 0; i < topHalf; i++ {
			standings[i].AccelerationBonus = bonus
		}
	case domain.AccelAddedScore:
		if round > settings.Rounds {
			return
		}
		for i := 0; i < topHalf; i++ {
			standings[i].AccelerationBonus = settings.BreakPoint
		}
	case domain.AccelAllRounds:
		for i := 0; i < topHalf; i++ {
			standings[i].AccelerationBonus = settings.BreakPoint
		}
	case domain.AccelSixths:
		if round > 2 {
			return
		}
		// Top sixth gets +1 in round 1, top third +0.5 in round 2.
		sixth := (len(standings) + 5) / 6
		third := (len(standings) + 2) / 3
		switch round {
		case 1:
			for i := 0; i < sixth && i < len(standings); i++ {
				standings[i].AccelerationBonus = 1.0
			}
		case 2:
			for i := 0; i < third && i < len(standings); i++ {
				standings[i].AccelerationBonus = 0.5
			}
		}
	}
}
