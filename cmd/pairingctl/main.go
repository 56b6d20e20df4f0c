// Command pairingctl is the process-level adapter around the pairing core:
// it loads a Tournament snapshot from Postgres (or, with --trf-in, imports
// it from a TRF file instead), calls the requested engine operation, and prints
// or persists the result. Config loading follows the standard
// godotenv.Load() plus getEnvOrDefault shape for the handful of
// process-level knobs kept outside the snapshot itself.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cliffdoyle/chess-pairing-engine/internal/domain"
	"github.com/cliffdoyle/chess-pairing-engine/internal/engine"
	"github.com/cliffdoyle/chess-pairing-engine/internal/persistence/postgres"
	"github.com/cliffdoyle/chess-pairing-engine/internal/report"
	"github.com/cliffdoyle/chess-pairing-engine/internal/trf"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	op := flag.String("op", "generate", "operation: generate|standings|continue|validate")
	tournamentID := flag.String("tournament", "", "tournament id")
	round := flag.Int("round", 0, "round to pair (generate); for continue, the current completed round")
	trfIn := flag.String("trf-in", "", "optional TRF file to import in place of the Postgres snapshot")
	trfOut := flag.String("trf-out", "", "optional path to export the tournament's pairings as TRF after the operation")
	dryRun := flag.Bool("dry-run", false, "compute but do not persist generated pairings")
	flag.Parse()

	if *tournamentID == "" {
		log.Fatalf("[pairingctl] -tournament is required")
	}

	logLevel := getEnvOrDefault("PAIRING_LOG_LEVEL", "info")
	log.Printf("[pairingctl] starting op=%s tournament=%s round=%d log_level=%s", *op, *tournamentID, *round, logLevel)

	ctx := context.Background()

	var t *domain.Tournament
	var store *postgres.PairingStore

	if *trfIn != "" {
		f, err := os.Open(*trfIn)
		if err != nil {
			log.Fatalf("[pairingctl] open trf-in: %v", err)
		}
		defer f.Close()
		t, err = trf.Import(f, *tournamentID)
		if err != nil {
			log.Fatalf("[pairingctl] import TRF: %v", err)
		}
		t.Scoring = domain.DefaultScoring()
		t.ByeSettings = domain.DefaultByeSettings()
		t.TiebreakOrder = []domain.TiebreakID{domain.TiebreakBuchholz, domain.TiebreakSonnebornBerger}
		t.TranspositionLimit = 8
	} else {
		db := openDB()
		defer db.Close()
		loader := postgres.NewSnapshotLoader(db)
		var err error
		t, err = loader.Load(ctx, *tournamentID)
		if err != nil {
			log.Fatalf("[pairingctl] load snapshot: %v", err)
		}
		store = postgres.NewPairingStore(db)
	}

	eng := engine.New()

	switch *op {
	case "generate":
		runGenerate(ctx, eng, store, t, *round, *dryRun)
	case "continue":
		runContinue(ctx, eng, store, t, *round, *dryRun)
	case "standings":
		runStandings(eng, t)
	case "validate":
		log.Fatalf("[pairingctl] validate operation requires a previously generated PairingSet; use generate first")
	default:
		log.Fatalf("[pairingctl] unknown -op %q", *op)
	}

	if *trfOut != "" {
		f, err := os.Create(*trfOut)
		if err != nil {
			log.Fatalf("[pairingctl] create trf-out: %v", err)
		}
		defer f.Close()
		for _, section := range t.Sections {
			if err := trf.Export(f, t, section); err != nil {
				log.Fatalf("[pairingctl] export TRF: %v", err)
			}
		}
	}
}

func runGenerate(ctx context.Context, eng *engine.Engine, store *postgres.PairingStore, t *domain.Tournament, round int, dryRun bool) {
	ps, err := eng.GeneratePairings(t, round)
	if err != nil {
		log.Fatalf("[GeneratePairings] %v", err)
	}
	for section, sp := range ps.Sections {
		fmt.Printf("=== %s round %d ===\n", section, round)
		report.WritePairings(os.Stdout, sp)
	}
	if store != nil && !dryRun {
		if err := store.Save(ctx, ps); err != nil {
			log.Fatalf("[pairingctl] persist pairings: %v", err)
		}
		log.Printf("[pairingctl] persisted pairings for round %d", round)
	}
}

func runContinue(ctx context.Context, eng *engine.Engine, store *postgres.PairingStore, t *domain.Tournament, currentRound int, dryRun bool) {
	ps, err := eng.ContinueToNextRound(t, currentRound)
	if err != nil {
		log.Fatalf("[ContinueToNextRound] %v", err)
	}
	for section, sp := range ps.Sections {
		fmt.Printf("=== %s round %d ===\n", section, ps.Round)
		report.WritePairings(os.Stdout, sp)
	}
	if store != nil && !dryRun {
		if err := store.Save(ctx, ps); err != nil {
			log.Fatalf("[pairingctl] persist pairings: %v", err)
		}
		log.Printf("[pairingctl] persisted pairings for round %d", ps.Round)
	}
}

func runStandings(eng *engine.Engine, t *domain.Tournament) {
	tables, err := eng.ComputeStandings(t, nil)
	if err != nil {
		log.Fatalf("[ComputeStandings] %v", err)
	}
	for section, table := range tables {
		fmt.Printf("=== %s standings ===\n", section)
		report.WriteStandings(os.Stdout, section, table, t.TiebreakOrder)
	}
}

func openDB() *sql.DB {
	dbHost := getEnvOrDefault("DB_HOST", "localhost")
	dbPort := getEnvOrDefault("DB_PORT", "5432")
	dbUser := getEnvOrDefault("DB_USER", "postgres")
	dbPass := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "chess_pairing_db")

	dbConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPass, dbName)

	db, err := sql.Open("postgres", dbConnStr)
	if err != nil {
		log.Fatalf("[pairingctl] open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("[pairingctl] ping database: %v", err)
	}
	return db
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
