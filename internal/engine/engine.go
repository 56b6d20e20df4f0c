// Package engine is the façade implementing the five external operations
// collaborators call into. It is the only package that wires
// snapshot, pairer, standings and validator together; every other package
// remains pure and callable on its own.
package engine

import (
	"fmt"
	"log"
	"sort"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
	"github.com/cliffdoyle/chess-pairing-engine/internal/pairer"
	"github.com/cliffdoyle/chess-pairing-engine/internal/roundstate"
	"github.com/cliffdoyle/chess-pairing-engine/internal/snapshot"
	"github.com/cliffdoyle/chess-pairing-engine/internal/standings"
	"github.com/cliffdoyle/chess-pairing-engine/internal/validator"
)

// Engine holds no state: every method is a pure function of its arguments.
// It exists as a type only so callers have a stable place to attach, e.g.,
// future instrumentation without changing every call site.
type Engine struct{}

// New returns a ready-to-use Engine.
func New() *Engine {
	return &Engine{}
}

// GeneratePairings produces a fresh PairingSet for round. Pre: results for
// rounds < round are present and complete; round has no existing pairings.
func (e *Engine) GeneratePairings(t *domain.Tournament, round int) (*domain.PairingSet, error) {
	if err := validateSnapshot(t); err != nil {
		return nil, err
	}

	for _, section := range t.Sections {
		if hasPairingsForRound(t, section, round) {
			return nil, &domain.AlreadyPairedError{Round: round}
		}
	}

	ps := &domain.PairingSet{TournamentID: t.ID, Round: round, Sections: make(map[string]*domain.SectionPairings, len(t.Sections))}

	gen, err := pairer.For(t)
	if err != nil {
		return nil, err
	}

	for _, section := range t.Sections {
		standingsForSection, err := snapshot.Build(t, section, round)
		if err != nil {
			return nil, err
		}

		sp, err := gen.Pair(t, section, round, standingsForSection)
		if err != nil {
			return nil, err
		}

		activePlayers := activePlayersInSection(t, section)
		report := validator.ValidatePairings(sp, activePlayers, priorPairings(t, section))
		if !report.OK() {
			log.Printf("[GeneratePairings] section %q round %d failed validation: %v", section, round, report.Errors)
			return nil, &domain.InvariantViolationError{Check: "post-pairing-validation", Details: fmt.Sprintf("%v", report.Errors)}
		}
		for _, w := range report.Warnings {
			log.Printf("[GeneratePairings] section %q round %d warning: %s", section, round, w)
			sp.Warnings = append(sp.Warnings, w)
		}

		ps.Sections[section] = sp
	}

	return ps, nil
}

// IsRoundComplete reports whether every pairing in round has a reported result.
func (e *Engine) IsRoundComplete(tournamentID string, round int, t *domain.Tournament) (complete bool, incompleteBySection []string) {
	return roundstate.IsComplete(tournamentID, round, t.Sections, pairingsBySection(t, round))
}

// ContinueToNextRound is the composed gate of (completion check, pairing
// generation, persistence). Persistence itself is the caller's job; this method only
// guarantees the gate and the generation are atomic from the engine's point
// of view — it either returns a complete, validated PairingSet or an error,
// never a partial one.
func (e *Engine) ContinueToNextRound(t *domain.Tournament, currentRound int) (*domain.PairingSet, error) {
	nextRound := currentRound + 1
	if err := roundstate.CheckContinue(t.ID, currentRound, t.Sections, pairingsBySection(t, currentRound), pairingsBySection(t, nextRound)); err != nil {
		return nil, err
	}
	return e.GeneratePairings(t, nextRound)
}

// ComputeStandings derives standings tables from the same snapshot the pairer would use for the round immediately
// after the last one with reported results; tiebreakOrder overrides
// t.TiebreakOrder when non-empty.
func (e *Engine) ComputeStandings(t *domain.Tournament, tiebreakOrder []domain.TiebreakID) (map[string]*standings.Table, error) {
	if len(tiebreakOrder) == 0 {
		tiebreakOrder = t.TiebreakOrder
	}

	out := make(map[string]*standings.Table, len(t.Sections))
	for _, section := range t.Sections {
		states, err := snapshot.Build(t, section, standingsRound(t))
		if err != nil {
			return nil, err
		}
		table := standings.Compute(states, tiebreakOrder)
		table.Section = section
		out[section] = table
	}
	return out, nil
}

// ValidatePairings re-runs the validator against an already-produced
// PairingSet (e.g. one loaded back from
// storage) rather than one this engine just generated.
func (e *Engine) ValidatePairings(ps *domain.PairingSet, t *domain.Tournament) map[string]*validator.Report {
	out := make(map[string]*validator.Report, len(ps.Sections))
	for section, sp := range ps.Sections {
		activePlayers := activePlayersInSection(t, section)
		out[section] = validator.ValidatePairings(sp, activePlayers, priorPairings(t, section))
	}
	return out
}

func validateSnapshot(t *domain.Tournament) error {
	sectionOf := make(map[string]string, len(t.Players))
	for _, p := range t.Players {
		if prev, ok := sectionOf[p.ID]; ok && prev != p.Section {
			return &domain.InvalidSnapshotError{Reason: fmt.Sprintf("player %s appears in both section %q and %q", p.ID, prev, p.Section)}
		}
		sectionOf[p.ID] = p.Section
	}
	for _, pr := range t.Pairings {
		if pr.WhiteID == "" {
			return &domain.InvalidSnapshotError{Reason: fmt.Sprintf("round %d board %d has no white player", pr.Round, pr.Board)}
		}
		if !pr.IsBye && pr.BlackID != "" {
			if sectionOf[pr.WhiteID] != "" && sectionOf[pr.BlackID] != "" && sectionOf[pr.WhiteID] != sectionOf[pr.BlackID] {
				return &domain.InvalidSnapshotError{Reason: fmt.Sprintf("round %d board %d pairs players from different sections", pr.Round, pr.Board)}
			}
		}
	}
	return nil
}

func hasPairingsForRound(t *domain.Tournament, section string, round int) bool {
	for _, pr := range t.Pairings {
		if pr.Section == section && pr.Round == round {
			return true
		}
	}
	return false
}

func priorPairings(t *domain.Tournament, section string) []*domain.Pairing {
	var out []*domain.Pairing
	for _, pr := range t.Pairings {
		if pr.Section == section {
			out = append(out, pr)
		}
	}
	return out
}

func pairingsBySection(t *domain.Tournament, round int) map[string][]*domain.Pairing {
	out := make(map[string][]*domain.Pairing)
	for _, pr := range t.Pairings {
		if pr.Round == round {
			out[pr.Section] = append(out[pr.Section], pr)
		}
	}
	return out
}

func activePlayersInSection(t *domain.Tournament, section string) []*domain.Player {
	var out []*domain.Player
	for _, p := range t.Players {
		if p.Section == section {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// standingsRound returns the round index one past the last round with
// recorded pairings, so snapshot.Build folds in every reported result
// without requiring the caller to track it separately.
func standingsRound(t *domain.Tournament) int {
	max := 0
	for _, pr := range t.Pairings {
		if pr.Round > max {
			max = pr.Round
		}
	}
	return max + 1
}
