// Package pairer implements the pairing-variant generators dispatched by
// format: Swiss-Dutch, round-robin, single-elimination, quad and team-Swiss.
// Every variant shares the same Generator interface so the engine façade
// can dispatch on Tournament.Format without knowing the internals of any
// one scheme.
package pairer

import (
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Generator produces one round's pairings for one section from that
// section's already-built PlayerState standings (snapshot.Build's output).
type Generator interface {
	Pair(t *domain.Tournament, section string, round int, standings []*domain.PlayerState) (*domain.SectionPairings, error)
}

// For dispatches to the Generator implementing t.Format.
func For(t *domain.Tournament) (Generator, error) {
	switch t.Format {
	case domain.FormatSwiss, domain.FormatDutch, domain.FormatAcceleratedSwiss, "":
		return &SwissDutch{}, nil
	case domain.FormatRoundRobin:
		return &RoundRobin{}, nil
	case domain.FormatSingleElimination:
		return &SingleElimination{}, nil
	case domain.FormatQuad:
		return &Quad{}, nil
	case domain.FormatTeamSwiss:
		return &TeamSwiss{}, nil
	default:
		return nil, &domain.ConfigurationError{Field: "format", Reason: "unknown pairing format: " + string(t.Format)}
	}
}

// numberBoards assigns contiguous 1..N board numbers to pairings in the
// order given, then appends byes after played pairings.
func numberBoards(pairings []*domain.Pairing) {
	n := 1
	for _, p := range pairings {
		if p.IsBye {
			continue
		}
		p.Board = n
		n++
	}
	for _, p := range pairings {
		if p.IsBye {
			p.Board = n
			n++
		}
	}
}
