// Package postgres is the persistence port the core pairing engine sits
// behind as a pure transformation: a SnapshotLoader that assembles a
// domain.Tournament from stored rows, and a PairingStore that commits a
// generated domain.PairingSet atomically. One struct per concern, each
// wrapping *sql.DB with context-scoped methods and hand-written SQL via
// lib/pq rather than an ORM.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
)

// SnapshotLoader assembles a domain.Tournament snapshot from Postgres.
type SnapshotLoader struct {
	db *sql.DB
}

func NewSnapshotLoader(db *sql.DB) *SnapshotLoader {
	return &SnapshotLoader{db: db}
}

// Load builds the full Tournament snapshot (config, players, teams, and every
// stored pairing of the tournament, whatever its round) the engine needs.
func (l *SnapshotLoader) Load(ctx context.Context, tournamentID string) (*domain.Tournament, error) {
	t, err := l.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load tournament %s: %w", tournamentID, err)
	}

	t.Players, err = l.loadPlayers(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load players for tournament %s: %w", tournamentID, err)
	}

	t.Pairings, err = l.loadPairings(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("load pairings for tournament %s: %w", tournamentID, err)
	}

	if t.Format == domain.FormatTeamSwiss {
		t.Teams, err = l.loadTeams(ctx, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("load teams for tournament %s: %w", tournamentID, err)
		}
	}

	sectionSet := make(map[string]bool)
	for _, p := range t.Players {
		sectionSet[p.Section] = true
	}
	t.Sections = t.Sections[:0]
	for s := range sectionSet {
		t.Sections = append(t.Sections, s)
	}

	return t, nil
}

func (l *SnapshotLoader) loadTournament(ctx context.Context, id string) (*domain.Tournament, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, format, total_rounds, current_round,
		       accel_enabled, accel_type, accel_rounds, accel_break_point,
		       tiebreak_order, scoring_win, scoring_draw, scoring_loss,
		       scoring_pairing_bye, scoring_requested_bye, scoring_inactive,
		       bye_full_point_pairing, bye_avoid_unrated_dropping,
		       transposition_limit, cross_group_pairings, group_size
		FROM tournaments WHERE id = $1
	`, id)

	t := &domain.Tournament{ID: id}
	var tiebreakOrderCSV string
	if err := row.Scan(
		&t.ID, &t.Format, &t.TotalRounds, &t.CurrentRound,
		&t.AccelerationSettings.Enabled, &t.AccelerationSettings.Type, &t.AccelerationSettings.Rounds, &t.AccelerationSettings.BreakPoint,
		&tiebreakOrderCSV, &t.Scoring.Win, &t.Scoring.Draw, &t.Scoring.Loss,
		&t.Scoring.PairingBye, &t.Scoring.RequestedBye, &t.Scoring.Inactive,
		&t.ByeSettings.FullPointPairingBye, &t.ByeSettings.AvoidUnratedDropping,
		&t.TranspositionLimit, &t.CrossGroupPairings, &t.GroupSize,
	); err != nil {
		return nil, err
	}
	t.TiebreakOrder = splitTiebreakOrder(tiebreakOrderCSV)
	return t, nil
}

func (l *SnapshotLoader) loadPlayers(ctx context.Context, tournamentID string) ([]*domain.Player, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, rating, title, section, status, requested_bye_rounds
		FROM players WHERE tournament_id = $1 ORDER BY id
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Player
	for rows.Next() {
		p := &domain.Player{}
		var byeRoundsCSV sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Rating, &p.Title, &p.Section, &p.Status, &byeRoundsCSV); err != nil {
			return nil, err
		}
		p.RequestedByeRounds = parseRequestedByeRounds(byeRoundsCSV.String)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (l *SnapshotLoader) loadPairings(ctx context.Context, tournamentID string) ([]*domain.Pairing, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT round, board, section, white_id, black_id, is_bye, bye_type,
		       white_score, black_score
		FROM pairings WHERE tournament_id = $1 ORDER BY round, board
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Pairing
	for rows.Next() {
		pr := &domain.Pairing{TournamentID: tournamentID}
		var blackID sql.NullString
		var byeType sql.NullString
		var whiteScore, blackScore sql.NullFloat64
		if err := rows.Scan(&pr.Round, &pr.Board, &pr.Section, &pr.WhiteID, &blackID, &pr.IsBye, &byeType, &whiteScore, &blackScore); err != nil {
			return nil, err
		}
		pr.BlackID = blackID.String
		pr.ByeType = domain.ByeType(byeType.String)
		if whiteScore.Valid && blackScore.Valid {
			pr.Result = &domain.GameOutcome{WhiteScore: whiteScore.Float64, BlackScore: blackScore.Float64}
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (l *SnapshotLoader) loadTeams(ctx context.Context, tournamentID string) ([]*domain.Team, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, section, player_ids FROM teams WHERE tournament_id = $1 ORDER BY id
	`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Team
	for rows.Next() {
		team := &domain.Team{}
		var boardsCSV string
		if err := rows.Scan(&team.ID, &team.Name, &team.Section, &boardsCSV); err != nil {
			return nil, err
		}
		team.Boards = splitCSV(boardsCSV)
		out = append(out, team)
	}
	return out, rows.Err()
}
