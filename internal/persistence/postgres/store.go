package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
	"github.com/google/uuid"
)

// PairingStore persists a domain.PairingSet atomically: writing a
// generated pairing set either stores all pairings for the round/section
// or none. Every insert in Save runs inside one *sql.Tx.
type PairingStore struct {
	db *sql.DB
}

func NewPairingStore(db *sql.DB) *PairingStore {
	return &PairingStore{db: db}
}

// Save commits every pairing in ps inside a single transaction. Each
// pairing row gets a fresh uuid.New() identifier.
func (s *PairingStore) Save(ctx context.Context, ps *domain.PairingSet) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin pairing save transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pairings (
			id, tournament_id, section, round, board,
			white_id, black_id, is_bye, bye_type, white_score, black_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("prepare pairing insert: %w", err)
	}
	defer stmt.Close()

	for _, section := range ps.Sections {
		for _, pr := range section.Pairings {
			var blackID sql.NullString
			if pr.BlackID != "" {
				blackID = sql.NullString{String: pr.BlackID, Valid: true}
			}
			var byeType sql.NullString
			if pr.ByeType != domain.ByeNone {
				byeType = sql.NullString{String: string(pr.ByeType), Valid: true}
			}
			var whiteScore, blackScore sql.NullFloat64
			if pr.Result != nil {
				whiteScore = sql.NullFloat64{Float64: pr.Result.WhiteScore, Valid: true}
				blackScore = sql.NullFloat64{Float64: pr.Result.BlackScore, Valid: true}
			}

			if _, err = stmt.ExecContext(ctx,
				uuid.New(), ps.TournamentID, pr.Section, pr.Round, pr.Board,
				pr.WhiteID, blackID, pr.IsBye, byeType, whiteScore, blackScore,
			); err != nil {
				return fmt.Errorf("insert pairing (round %d board %d): %w", pr.Round, pr.Board, err)
			}
		}
	}

	return nil
}

// RecordResult writes a reported game outcome for one pairing, driving the
// RoundState machine from paired to in-progress/complete.
func (s *PairingStore) RecordResult(ctx context.Context, tournamentID, section string, round, board int, outcome domain.GameOutcome) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pairings SET white_score = $1, black_score = $2
		WHERE tournament_id = $3 AND section = $4 AND round = $5 AND board = $6
	`, outcome.WhiteScore, outcome.BlackScore, tournamentID, section, round, board)
	if err != nil {
		return fmt.Errorf("record result (tournament %s section %s round %d board %d): %w", tournamentID, section, round, board, err)
	}
	return nil
}

func splitTiebreakOrder(csv string) []domain.TiebreakID {
	var out []domain.TiebreakID
	for _, s := range splitCSV(csv) {
		out = append(out, domain.TiebreakID(s))
	}
	return out
}

func splitCSV(csv string) []string {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRequestedByeRounds turns the stored CSV of round numbers into the
// map the domain type wants. Only comma-separated integers are read;
// entries that are not positive integers are skipped, and no other
// encoding is recognised.
func parseRequestedByeRounds(csv string) map[int]bool {
	rounds := splitCSV(csv)
	if len(rounds) == 0 {
		return nil
	}
	out := make(map[int]bool, len(rounds))
	for _, r := range rounds {
		n, err := strconv.Atoi(r)
		if err != nil || n <= 0 {
			continue
		}
		out[n] = true
	}
	return out
}
