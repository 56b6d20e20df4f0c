// Package report renders standings and pairing sets for the CLI, grounded
// on dstathis-swisstools' FormatPlayers (which renders a tablewriter.Writer
// from a Tournament's player map) — the only repo in the pack that renders
// tournament data to a terminal table.
package report

import (
	"fmt"
	"io"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
	"github.com/cliffdoyle/chess-pairing-engine/internal/standings"
	"github.com/olekukonko/tablewriter"
)

// WriteStandings renders one section's standings.Table as a bordered
// terminal table: rank, name, rating, points, then one column per
// configured tiebreak, in tiebreakOrder.
func WriteStandings(w io.Writer, section string, table *standings.Table, tiebreakOrder []domain.TiebreakID) {
	t := tablewriter.NewWriter(w)

	header := []string{"Rank", "Name", "Rating", "Points"}
	for _, tb := range tiebreakOrder {
		header = append(header, tiebreakHeader(tb))
	}
	t.SetHeader(header)

	for _, row := range table.Rows {
		line := []string{
			fmt.Sprintf("%d", row.Rank),
			row.Player.Name,
			fmt.Sprintf("%d", row.Player.Rating),
			fmt.Sprintf("%.1f", row.Points),
		}
		for _, tb := range tiebreakOrder {
			line = append(line, fmt.Sprintf("%.1f", row.Tiebreaks[tb]))
		}
		t.Append(line)
	}

	t.Render()
}

// WritePairings renders one section's pairing set as board / white / black
// / bye type / result.
func WritePairings(w io.Writer, section *domain.SectionPairings) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Board", "White", "Black", "Bye", "Result"})

	for _, pr := range section.Pairings {
		black := pr.BlackID
		bye := ""
		if pr.IsBye {
			black = "-"
			bye = string(pr.ByeType)
		}
		result := ""
		if pr.Result != nil {
			result = fmt.Sprintf("%.1f-%.1f", pr.Result.WhiteScore, pr.Result.BlackScore)
		}
		t.Append([]string{fmt.Sprintf("%d", pr.Board), pr.WhiteID, black, bye, result})
	}

	t.Render()
}

func tiebreakHeader(tb domain.TiebreakID) string {
	switch tb {
	case domain.TiebreakBuchholz:
		return "Bchz"
	case domain.TiebreakBuchholzCut1:
		return "BchzC1"
	case domain.TiebreakSonnebornBerger:
		return "SB"
	case domain.TiebreakCumulative:
		return "Cum"
	case domain.TiebreakDirectEncounter:
		return "DE"
	case domain.TiebreakPerformanceRating:
		return "Perf"
	case domain.TiebreakModifiedBuchholz:
		return "MBchz"
	default:
		return string(tb)
	}
}
