package pairer

import (
	"testing"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

func singleElimTournament(players ...*domain.Player) *domain.Tournament {
	return &domain.Tournament{
		ID:       "t1",
		Format:   domain.FormatSingleElimination,
		Sections: []string{"Open"},
		Scoring:  domain.DefaultScoring(),
		Players:  players,
	}
}

// TestSingleEliminationRound1SeedsStandardBracket checks the 1-v-4, 2-v-3
// seeding for a full 4-player bracket.
func TestSingleEliminationRound1SeedsStandardBracket(t *testing.T) {
	players := []*domain.Player{mkPlayer("A", 2000), mkPlayer("B", 1900), mkPlayer("C", 1800), mkPlayer("D", 1700)}
	tourn := singleElimTournament(players...)
	standings := statesOf(players...)

	sp, err := (&SingleElimination{}).Pair(tourn, "Open", 1, standings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sp.Pairings) != 2 {
		t.Fatalf("expected 2 pairings, got %d", len(sp.Pairings))
	}
	if sp.Pairings[0].WhiteID != "A" || sp.Pairings[0].BlackID != "D" {
		t.Fatalf("expected top seed A to face bottom seed D, got white=%s black=%s", sp.Pairings[0].WhiteID, sp.Pairings[0].BlackID)
	}
	if sp.Pairings[1].WhiteID != "C" || sp.Pairings[1].BlackID != "B" {
		t.Fatalf("expected seed 2 (B) to face seed 3 (C), got white=%s black=%s", sp.Pairings[1].WhiteID, sp.Pairings[1].BlackID)
	}
}

// TestSingleEliminationByesFillNonPowerOfTwoField checks a 3-player field
// gives the unmatched bracket slot a bye rather than failing.
func TestSingleEliminationByesFillNonPowerOfTwoField(t *testing.T) {
	players := []*domain.Player{mkPlayer("A", 2000), mkPlayer("B", 1900), mkPlayer("C", 1800)}
	tourn := singleElimTournament(players...)
	standings := statesOf(players...)

	sp, err := (&SingleElimination{}).Pair(tourn, "Open", 1, standings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var byes, played int
	for _, pr := range sp.Pairings {
		if pr.IsBye {
			byes++
			if pr.WhiteID != "A" {
				t.Fatalf("expected the top seed to draw the bye in a 3-player bracket, got %s", pr.WhiteID)
			}
		} else {
			played++
		}
	}
	if byes != 1 || played != 1 {
		t.Fatalf("expected exactly one bye and one played pairing, got byes=%d played=%d", byes, played)
	}
}

// TestSingleEliminationRound2ResolvesWinners checks winner resolution from
// recorded round-1 results drives round-2 bracket participants.
func TestSingleEliminationRound2ResolvesWinners(t *testing.T) {
	players := []*domain.Player{mkPlayer("A", 2000), mkPlayer("B", 1900), mkPlayer("C", 1800), mkPlayer("D", 1700)}
	tourn := singleElimTournament(players...)
	standings := statesOf(players...)

	sp1, err := (&SingleElimination{}).Pair(tourn, "Open", 1, standings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, pr := range sp1.Pairings {
		pr.Result = &domain.GameOutcome{WhiteScore: 1, BlackScore: 0}
		pr.TournamentID = tourn.ID
	}
	tourn.Pairings = append(tourn.Pairings, sp1.Pairings...)

	sp2, err := (&SingleElimination{}).Pair(tourn, "Open", 2, standings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sp2.Pairings) != 1 {
		t.Fatalf("expected a single final pairing, got %d", len(sp2.Pairings))
	}
	winners := map[string]bool{sp2.Pairings[0].WhiteID: true, sp2.Pairings[0].BlackID: true}
	if !winners["A"] || !winners["C"] {
		t.Fatalf("expected round-1 winners A and C to meet in round 2, got %s vs %s", sp2.Pairings[0].WhiteID, sp2.Pairings[0].BlackID)
	}
}
