// Package roundstate implements the per-(tournament,round) state machine and
// the "continue to next round" gate that composes it with pairing generation.
package roundstate

import (
	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Observe derives the current RoundState for one section's round from its
// pairings. A round with no pairings is not-started; every pairing having a
// result (or being a bye, which always counts as complete) makes it
// complete; any result reported makes it at least in-progress.
func Observe(tournamentID, section string, round int, pairings []*domain.Pairing) *domain.RoundState {
	rs := &domain.RoundState{TournamentID: tournamentID, Section: section, Round: round, State: domain.RoundNotStarted}
	if len(pairings) == 0 {
		return rs
	}

	rs.State = domain.RoundPaired
	anyResult := false
	missing := 0
	for _, pr := range pairings {
		if pr.IsBye {
			continue
		}
		if pr.Result != nil {
			anyResult = true
		} else {
			missing++
		}
	}
	rs.MissingCount = missing

	if missing == 0 {
		rs.State = domain.RoundComplete
		return rs
	}
	if anyResult {
		rs.State = domain.RoundInProgress
	}
	return rs
}

// IsComplete reports whether every section of a round is complete, and which
// sections are not.
func IsComplete(tournamentID string, round int, sections []string, pairingsBySection map[string][]*domain.Pairing) (complete bool, incomplete []string) {
	complete = true
	for _, s := range sections {
		rs := Observe(tournamentID, s, round, pairingsBySection[s])
		if rs.State != domain.RoundComplete {
			complete = false
			incomplete = append(incomplete, s)
		}
	}
	return complete, incomplete
}

// CheckContinue enforces the next-round gate:
// the current round must be complete in every section, and round+1 must not
// already have pairings.
func CheckContinue(tournamentID string, currentRound int, sections []string, pairingsBySection map[string][]*domain.Pairing, nextRoundPairingsBySection map[string][]*domain.Pairing) error {
	complete, incomplete := IsComplete(tournamentID, currentRound, sections, pairingsBySection)
	if !complete {
		missing := 0
		for _, s := range incomplete {
			rs := Observe(tournamentID, s, currentRound, pairingsBySection[s])
			missing += rs.MissingCount
		}
		return &domain.RoundIncompleteError{MissingCount: missing, Sections: incomplete}
	}

	for _, s := range sections {
		if len(nextRoundPairingsBySection[s]) > 0 {
			return &domain.AlreadyPairedError{Round: currentRound + 1}
		}
	}
	return nil
}
