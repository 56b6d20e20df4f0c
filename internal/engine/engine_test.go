package engine

import (
	"testing"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

func player(id string, rating int, section string) *domain.Player {
	return &domain.Player{ID: id, Name: id, Rating: rating, Section: section, Status: domain.StatusActive}
}

func swissTournament(players ...*domain.Player) *domain.Tournament {
	return &domain.Tournament{
		ID:                 "t1",
		Format:             domain.FormatSwiss,
		Sections:           []string{"Open"},
		Scoring:            domain.DefaultScoring(),
		TranspositionLimit: 8,
		TiebreakOrder:      []domain.TiebreakID{domain.TiebreakBuchholz},
		Players:            players,
	}
}

func TestGeneratePairingsProducesValidatedSet(t *testing.T) {
	var players []*domain.Player
	for i, id := range []string{"A", "B", "C", "D"} {
		players = append(players, player(id, 2000-i*50, "Open"))
	}
	tourn := swissTournament(players...)

	ps, err := New().GeneratePairings(tourn, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sp, ok := ps.Sections["Open"]
	if !ok {
		t.Fatalf("expected an Open section in the result")
	}
	if len(sp.Pairings) != 2 {
		t.Fatalf("expected 2 pairings for 4 players, got %d", len(sp.Pairings))
	}
}

func TestGeneratePairingsRejectsAlreadyPairedRound(t *testing.T) {
	players := []*domain.Player{player("A", 2000, "Open"), player("B", 1900, "Open")}
	tourn := swissTournament(players...)
	tourn.Pairings = []*domain.Pairing{{Section: "Open", Round: 1, WhiteID: "A", BlackID: "B"}}

	_, err := New().GeneratePairings(tourn, 1)
	if err == nil {
		t.Fatalf("expected an error since round 1 already has pairings")
	}
	if _, ok := err.(*domain.AlreadyPairedError); !ok {
		t.Fatalf("expected *domain.AlreadyPairedError, got %T", err)
	}
}

func TestGeneratePairingsRejectsCrossSectionPairing(t *testing.T) {
	players := []*domain.Player{player("A", 2000, "Open"), player("B", 1900, "Reserve")}
	tourn := swissTournament(players...)
	tourn.Pairings = []*domain.Pairing{
		{Section: "Open", Round: 1, WhiteID: "A", BlackID: "B"},
	}

	_, err := New().GeneratePairings(tourn, 2)
	if err == nil {
		t.Fatalf("expected an error for a cross-section past pairing")
	}
	if _, ok := err.(*domain.InvalidSnapshotError); !ok {
		t.Fatalf("expected *domain.InvalidSnapshotError, got %T", err)
	}
}

func TestIsRoundCompleteReflectsMissingResults(t *testing.T) {
	tourn := swissTournament(player("A", 2000, "Open"), player("B", 1900, "Open"))
	tourn.Pairings = []*domain.Pairing{{Section: "Open", Round: 1, WhiteID: "A", BlackID: "B"}}

	complete, incomplete := New().IsRoundComplete(tourn.ID, 1, tourn)
	if complete {
		t.Fatalf("expected round 1 to be incomplete with no reported result")
	}
	if len(incomplete) != 1 || incomplete[0] != "Open" {
		t.Fatalf("expected Open reported incomplete, got %v", incomplete)
	}
}

func TestContinueToNextRoundGeneratesRound2AfterCompletion(t *testing.T) {
	var players []*domain.Player
	for i, id := range []string{"A", "B", "C", "D"} {
		players = append(players, player(id, 2000-i*50, "Open"))
	}
	tourn := swissTournament(players...)
	tourn.Pairings = []*domain.Pairing{
		{Section: "Open", Round: 1, WhiteID: "A", BlackID: "C", Result: &domain.GameOutcome{WhiteScore: 1, BlackScore: 0}},
		{Section: "Open", Round: 1, WhiteID: "D", BlackID: "B", Result: &domain.GameOutcome{WhiteScore: 0, BlackScore: 1}},
	}

	ps, err := New().ContinueToNextRound(tourn, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.Round != 2 {
		t.Fatalf("expected round 2, got %d", ps.Round)
	}
}

func TestContinueToNextRoundRejectsIncompleteRound(t *testing.T) {
	tourn := swissTournament(player("A", 2000, "Open"), player("B", 1900, "Open"))
	tourn.Pairings = []*domain.Pairing{{Section: "Open", Round: 1, WhiteID: "A", BlackID: "B"}}

	_, err := New().ContinueToNextRound(tourn, 1)
	if err == nil {
		t.Fatalf("expected an error since round 1 has no reported result")
	}
	if _, ok := err.(*domain.RoundIncompleteError); !ok {
		t.Fatalf("expected *domain.RoundIncompleteError, got %T", err)
	}
}

func TestComputeStandingsFoldsInReportedResults(t *testing.T) {
	tourn := swissTournament(player("A", 2000, "Open"), player("B", 1900, "Open"))
	tourn.Pairings = []*domain.Pairing{
		{Section: "Open", Round: 1, WhiteID: "A", BlackID: "B", Result: &domain.GameOutcome{WhiteScore: 1, BlackScore: 0}},
	}

	tables, err := New().ComputeStandings(tourn, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	table, ok := tables["Open"]
	if !ok {
		t.Fatalf("expected an Open standings table")
	}
	if table.Rows[0].Player.ID != "A" || table.Rows[0].Points != 1.0 {
		t.Fatalf("expected A to lead with 1.0 points, got %s/%v", table.Rows[0].Player.ID, table.Rows[0].Points)
	}
}

func TestValidatePairingsRevalidatesALoadedSet(t *testing.T) {
	tourn := swissTournament(player("A", 2000, "Open"), player("B", 1900, "Open"))
	ps := &domain.PairingSet{
		TournamentID: "t1",
		Round:        1,
		Sections: map[string]*domain.SectionPairings{
			"Open": {
				Section: "Open",
				Pairings: []*domain.Pairing{
					{TournamentID: "t1", Section: "Open", Round: 1, Board: 1, WhiteID: "A", BlackID: "B"},
				},
			},
		},
	}

	reports := New().ValidatePairings(ps, tourn)
	report, ok := reports["Open"]
	if !ok {
		t.Fatalf("expected a report for the Open section")
	}
	if !report.OK() {
		t.Fatalf("expected a clean report, got errors: %v", report.Errors)
	}
}
