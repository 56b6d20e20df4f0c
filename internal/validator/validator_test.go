package validator

import (
	"testing"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

func activePlayers(ids ...string) []*domain.Player {
	out := make([]*domain.Player, len(ids))
	for i, id := range ids {
		out[i] = &domain.Player{ID: id, Name: id, Rating: 1500, Status: domain.StatusActive}
	}
	return out
}

func TestValidatePairingsAcceptsWellFormedSet(t *testing.T) {
	section := &domain.SectionPairings{
		Section: "Open",
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 2, Board: 1, WhiteID: "a", BlackID: "b"},
			{TournamentID: "t1", Section: "Open", Round: 2, Board: 2, WhiteID: "c", IsBye: true, ByeType: domain.ByePairingAllocated},
		},
	}
	report := ValidatePairings(section, activePlayers("a", "b", "c"), nil)
	if !report.OK() {
		t.Fatalf("expected a clean report, got errors: %v", report.Errors)
	}
}

func TestValidatePairingsFlagsDuplicatePlayer(t *testing.T) {
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "b"},
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 2, WhiteID: "a", BlackID: "c"},
		},
	}
	report := ValidatePairings(section, activePlayers("a", "b", "c"), nil)
	if report.OK() {
		t.Fatalf("expected an error for player a appearing twice")
	}
}

func TestValidatePairingsFlagsMissingPlayer(t *testing.T) {
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "b"},
		},
	}
	report := ValidatePairings(section, activePlayers("a", "b", "c"), nil)
	if report.OK() {
		t.Fatalf("expected an error since active player c is missing from the round")
	}
}

func TestValidatePairingsFlagsRepeatEncounter(t *testing.T) {
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 2, Board: 1, WhiteID: "a", BlackID: "b"},
		},
	}
	prev := []*domain.Pairing{
		{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "b", BlackID: "a"},
	}
	report := ValidatePairings(section, activePlayers("a", "b"), prev)
	if report.OK() {
		t.Fatalf("expected an error since a and b already played, regardless of color order")
	}
}

func TestValidatePairingsFlagsSelfPairing(t *testing.T) {
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "a"},
		},
	}
	report := ValidatePairings(section, activePlayers("a"), nil)
	if report.OK() {
		t.Fatalf("expected an error for a player paired against themselves")
	}
}

func TestValidatePairingsFlagsNonContiguousBoards(t *testing.T) {
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "b"},
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 3, WhiteID: "c", BlackID: "d"},
		},
	}
	report := ValidatePairings(section, activePlayers("a", "b", "c", "d"), nil)
	if report.OK() {
		t.Fatalf("expected an error for a non-contiguous board sequence (1,3)")
	}
}

func TestValidatePairingsWarnsOnLargeRatingGap(t *testing.T) {
	players := []*domain.Player{
		{ID: "a", Name: "a", Rating: 2400, Status: domain.StatusActive},
		{ID: "b", Name: "b", Rating: 1500, Status: domain.StatusActive},
	}
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "b"},
		},
	}
	report := ValidatePairings(section, players, nil)
	if !report.OK() {
		t.Fatalf("a large rating gap is a warning, not an error: %v", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected exactly one warning for the 900-point rating gap, got %d", len(report.Warnings))
	}
}

func TestValidatePairingsFlagsColorAbsoluteConflict(t *testing.T) {
	// a has played white twice in a row (absolute preference for black);
	// b has an imbalance of +2 (two whites, zero blacks; also an absolute
	// preference for black). Pairing them leaves one player's absolute
	// preference unresolvable.
	prev := []*domain.Pairing{
		{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "c"},
		{TournamentID: "t1", Section: "Open", Round: 2, Board: 1, WhiteID: "a", BlackID: "d"},
		{TournamentID: "t1", Section: "Open", Round: 1, Board: 2, WhiteID: "b", BlackID: "e"},
		{TournamentID: "t1", Section: "Open", Round: 2, Board: 2, WhiteID: "b", BlackID: "f"},
	}
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 3, Board: 1, WhiteID: "a", BlackID: "b"},
		},
	}
	report := ValidatePairings(section, activePlayers("a", "b"), prev)
	if report.OK() {
		t.Fatalf("expected an error since a and b both carry an absolute preference for black")
	}
}

func TestValidatePairingsAllowsComplementaryAbsolutePreferences(t *testing.T) {
	// a wants black (two whites in a row); b wants white (two blacks in a
	// row). Pairing a=white, b=black satisfies neither, but pairing
	// a=black, b=white (as given here: b is white and a is black) does not
	// create a same-color conflict since their wanted colors differ.
	prev := []*domain.Pairing{
		{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", BlackID: "c"},
		{TournamentID: "t1", Section: "Open", Round: 2, Board: 1, WhiteID: "a", BlackID: "d"},
		{TournamentID: "t1", Section: "Open", Round: 1, Board: 2, WhiteID: "e", BlackID: "b"},
		{TournamentID: "t1", Section: "Open", Round: 2, Board: 2, WhiteID: "f", BlackID: "b"},
	}
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 3, Board: 1, WhiteID: "b", BlackID: "a"},
		},
	}
	report := ValidatePairings(section, activePlayers("a", "b"), prev)
	if !report.OK() {
		t.Fatalf("a (wants black) and b (wants white) paired b=white/a=black should not conflict: %v", report.Errors)
	}
}

func TestValidatePairingsWithdrawnPlayersAreExempt(t *testing.T) {
	players := activePlayers("a", "b")
	players[1].Status = domain.StatusWithdrawn
	section := &domain.SectionPairings{
		Pairings: []*domain.Pairing{
			{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "a", IsBye: true, ByeType: domain.ByeInactiveZero},
		},
	}
	report := ValidatePairings(section, players, nil)
	if !report.OK() {
		t.Fatalf("expected a withdrawn player to be exempt from the must-appear check: %v", report.Errors)
	}
}
