// Package trf implements optional FIDE TRF(x) plain-text import/export of a
// Tournament snapshot. TRF is a fixed-column line format; this package
// reads and writes only what the pairing engine's data model needs: the
// "001" player-data lines (player id, rating, name, points, then one
// "round opponent colour result" triple per round) and the tournament
// header lines ("012" name, "132" rounds).
package trf

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// Import parses a TRF(x) file into a Tournament snapshot. Only the fields
// the pairing engine consumes are populated: players, their ratings and
// status, and past pairings reconstructed from each "001" line's round
// triples. Section is assumed to be a single section named "Open" unless
// overridden by the caller after Import returns, since TRF has no native
// concept of multiple sections.
func Import(r io.Reader, tournamentID string) (*domain.Tournament, error) {
	t := &domain.Tournament{ID: tournamentID, Sections: []string{"Open"}}

	byID := make(map[string]*domain.Player)
	pairingsByRound := make(map[int][]*domain.Pairing)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 3 {
			continue
		}
		code := line[:3]
		switch code {
		case "012":
			// tournament name; not modeled on Tournament, ignored.
		case "132":
			if n, err := strconv.Atoi(strings.TrimSpace(line[4:])); err == nil {
				t.TotalRounds = n
			}
		case "001":
			p, rounds, err := parsePlayerLine(line)
			if err != nil {
				return nil, fmt.Errorf("trf: %w", err)
			}
			p.Section = "Open"
			byID[p.ID] = p
			t.Players = append(t.Players, p)
			for _, rt := range rounds {
				pairingsByRound[rt.round] = append(pairingsByRound[rt.round], rt.toPairing(tournamentID, "Open", p.ID))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trf: %w", err)
	}

	t.Pairings = mergeSymmetricPairings(pairingsByRound)
	return t, nil
}

// roundTriple is one "round opponent colour result" group from a "001" line.
type roundTriple struct {
	round      int
	opponentID string // empty means a bye
	color      domain.Color
	result     byte // '1' win, '0' loss, '=' draw, '-' unplayed/bye marker; on a bye, 'H' and 'Z' select a requested-half or inactive-zero bye
}

func (rt roundTriple) toPairing(tournamentID, section, playerID string) *domain.Pairing {
	pr := &domain.Pairing{TournamentID: tournamentID, Section: section, Round: rt.round}
	if rt.opponentID == "" {
		pr.IsBye = true
		pr.WhiteID = playerID
		switch rt.result {
		case 'H':
			pr.ByeType = domain.ByeRequestedHalf
		case 'Z':
			pr.ByeType = domain.ByeInactiveZero
		default:
			pr.ByeType = domain.ByePairingAllocated
		}
		return pr
	}

	if rt.color == domain.Black {
		pr.WhiteID = rt.opponentID
		pr.BlackID = playerID
	} else {
		pr.WhiteID = playerID
		pr.BlackID = rt.opponentID
	}
	return pr
}

// parsePlayerLine parses one fixed-width "001" line: columns 5-8 player id,
// 49-52 rating, 15-47 name (trimmed), 85-89 points, then repeating 10-char
// groups of (round 4, opponent 4, color 1, result 1).
func parsePlayerLine(line string) (*domain.Player, []roundTriple, error) {
	get := func(line string, from, to int) string {
		if from >= len(line) {
			return ""
		}
		if to > len(line) {
			to = len(line)
		}
		return strings.TrimSpace(line[from:to])
	}

	id := get(line, 4, 8)
	if id == "" {
		return nil, nil, fmt.Errorf("001 line missing player id: %q", line)
	}
	name := get(line, 14, 47)
	ratingStr := get(line, 48, 52)
	rating, _ := strconv.Atoi(ratingStr)

	p := &domain.Player{ID: id, Name: name, Rating: rating, Status: domain.StatusActive}

	const groupsStart = 91
	const groupWidth = 10
	var triples []roundTriple
	for pos := groupsStart; pos < len(line); pos += groupWidth {
		end := pos + groupWidth
		if end > len(line) {
			end = len(line)
		}
		group := line[pos:end] // raw, untrimmed: the round/opponent/color/result sub-offsets below depend on fixed-width columns
		if len(group) < 4 {
			break
		}
		roundField := strings.TrimSpace(group[0:4])
		round, err := strconv.Atoi(roundField)
		if err != nil {
			continue
		}
		rest := group[4:]
		oppStr := strings.TrimSpace(firstN(rest, 4))
		colorStr := strings.TrimSpace(nthChar(rest, 4))
		resultStr := strings.TrimSpace(nthChar(rest, 5))

		rt := roundTriple{round: round}
		if oppStr != "0000" && oppStr != "" {
			rt.opponentID = oppStr
		}
		switch colorStr {
		case "w":
			rt.color = domain.White
		case "b":
			rt.color = domain.Black
		default:
			rt.color = domain.NoColor
		}
		if resultStr != "" {
			rt.result = resultStr[0]
		}
		triples = append(triples, rt)
	}

	return p, triples, nil
}

func firstN(s string, n int) string {
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

func nthChar(s string, i int) string {
	if i >= len(s) {
		return ""
	}
	return string(s[i])
}

// mergeSymmetricPairings collapses the duplicate white/black-side pairing
// records each player's "001" line independently produced for the same
// game into one Pairing per round per encounter.
func mergeSymmetricPairings(byRound map[int][]*domain.Pairing) []*domain.Pairing {
	var out []*domain.Pairing
	for round, prs := range byRound {
		seen := make(map[string]bool)
		for _, pr := range prs {
			if pr.IsBye {
				out = append(out, pr)
				continue
			}
			key := pairKey(pr.WhiteID, pr.BlackID)
			if seen[key] {
				continue
			}
			seen[key] = true
			pr.Round = round
			out = append(out, pr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].WhiteID < out[j].WhiteID
	})
	return out
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Export writes a minimal TRF(x)-compatible rendering of ps for one
// section: a "012" name line, a "132" rounds line, and one "001" line per
// player summarizing their round-by-round results. This is lossy relative
// to full TRF (no federation/birthdate/etc fields). Its "001" layout is not
// the one parsePlayerLine reads (the name starts at column 24, and round
// groups follow the points field two spaces apart rather than at a fixed
// offset), byes carry only the '-' marker, and Import does not rebuild
// results, so an exported file does not import back to the same Tournament.
func Export(w io.Writer, t *domain.Tournament, section string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "012 %s\n", t.ID)
	fmt.Fprintf(bw, "132 %d\n", t.TotalRounds)

	var players []*domain.Player
	for _, p := range t.Players {
		if p.Section == section {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	for _, p := range players {
		line, err := formatPlayerLine(p, t, section)
		if err != nil {
			return fmt.Errorf("trf export: %w", err)
		}
		fmt.Fprintln(bw, line)
	}
	return bw.Flush()
}

func formatPlayerLine(p *domain.Player, t *domain.Tournament, section string) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "001 %4s               %-33.33s%4d", p.ID, p.Name, p.Rating)

	var rounds []*domain.Pairing
	for _, pr := range t.Pairings {
		if pr.Section != section {
			continue
		}
		if pr.WhiteID == p.ID || pr.BlackID == p.ID {
			rounds = append(rounds, pr)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Round < rounds[j].Round })

	points := 0.0
	for _, pr := range rounds {
		points += playerPoints(pr, p.ID, t.Scoring)
	}
	fmt.Fprintf(&sb, "  %4.1f", points)

	for _, pr := range rounds {
		fmt.Fprint(&sb, "  ", formatRoundGroup(pr, p.ID))
	}
	return sb.String(), nil
}

func playerPoints(pr *domain.Pairing, playerID string, scoring domain.Scoring) float64 {
	if pr.IsBye {
		switch pr.ByeType {
		case domain.ByeRequestedHalf:
			return scoring.RequestedBye
		case domain.ByeInactiveZero:
			return scoring.Inactive
		case domain.ByePairingAllocated:
			return scoring.PairingBye
		}
		return 0
	}
	if pr.Result == nil {
		return 0
	}
	if pr.WhiteID == playerID {
		return pr.Result.WhiteScore
	}
	return pr.Result.BlackScore
}

func formatRoundGroup(pr *domain.Pairing, playerID string) string {
	if pr.IsBye {
		return fmt.Sprintf("%4d 0000 -", pr.Round)
	}
	opponent, color := pr.BlackID, "w"
	if pr.WhiteID != playerID {
		opponent, color = pr.WhiteID, "b"
	}
	result := "="
	if pr.Result != nil {
		switch {
		case pr.WhiteID == playerID && pr.Result.WhiteScore > pr.Result.BlackScore,
			pr.BlackID == playerID && pr.Result.BlackScore > pr.Result.WhiteScore:
			result = "1"
		case pr.WhiteID == playerID && pr.Result.WhiteScore < pr.Result.BlackScore,
			pr.BlackID == playerID && pr.Result.BlackScore < pr.Result.WhiteScore:
			result = "0"
		}
	}
	return fmt.Sprintf("%4d %4s %s %s", pr.Round, opponent, color, result)
}
