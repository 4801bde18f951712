package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "meterdash/internal/config"
)

type seedConfig struct {
	dsn     string
	records int
	reset   bool
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.records <= 0 {
		log.Fatal("records must be > 0")
	}

	domains, err := appconfig.LoadConfig()
	if err != nil {
		log.Fatalf("load reporting config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := ensureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if cfg.reset {
		if err := reset(ctx, db); err != nil {
			log.Fatalf("reset: %v", err)
		}
	}

	electricityTypes := []string{"Residential", "Commercial", "Common Area"}
	waterTypes := []string{"L1", "L2", "L3", "L4"}

	total := 0
	for name, domain := range domains.Domains {
		types := electricityTypes
		if name == appconfig.DomainWater {
			types = waterTypes
		}
		count, err := seedDomain(ctx, db, name, domain, types, cfg.records)
		if err != nil {
			log.Fatalf("seed %s: %v", name, err)
		}
		log.Printf("seeded %d %s records", count, name)
		total += count
	}
	log.Printf("done: %d records", total)
}

func parseConfig() seedConfig {
	cfg := seedConfig{}
	flag.StringVar(&cfg.dsn, "dsn", envDefault("PG_DSN", os.Getenv("DATABASE_URL")), "postgres dsn")
	flag.IntVar(&cfg.records, "records", 24, "records per domain")
	flag.BoolVar(&cfg.reset, "reset", false, "truncate meter tables first")
	flag.Parse()
	return cfg
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS meter_records (
	id BIGSERIAL PRIMARY KEY,
	domain TEXT NOT NULL,
	name TEXT NOT NULL,
	account TEXT NOT NULL,
	meter_type TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS meter_readings (
	record_id BIGINT NOT NULL REFERENCES meter_records(id) ON DELETE CASCADE,
	month_key TEXT NOT NULL,
	consumption DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (record_id, month_key)
);
CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	actor TEXT,
	role TEXT,
	action TEXT,
	resource_type TEXT,
	resource_id TEXT,
	domain TEXT,
	metadata JSONB,
	payload_digest TEXT,
	ip TEXT,
	user_agent TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	return err
}

func reset(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `TRUNCATE meter_readings, meter_records RESTART IDENTITY`)
	return err
}

func seedDomain(ctx context.Context, db *sql.DB, domain string, cfg appconfig.DomainConfig, types []string, count int) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for i := 0; i < count; i++ {
		meterType := types[i%len(types)]
		name := fmt.Sprintf("%s-meter-%03d", domain, i+1)
		account := fmt.Sprintf("ACC-%s-%04d", domain[:1], i+1)

		var recordID int64
		err := tx.QueryRowContext(ctx, `
INSERT INTO meter_records (domain, name, account, meter_type)
VALUES ($1, $2, $3, $4)
RETURNING id`, domain, name, account, meterType).Scan(&recordID)
		if err != nil {
			return 0, err
		}

		for _, month := range cfg.Months {
			// Leave the occasional month absent so missing-field handling
			// gets exercised end to end.
			if rand.Intn(10) == 0 {
				continue
			}
			consumption := 50 + rand.Float64()*450
			if _, err := tx.ExecContext(ctx, `
INSERT INTO meter_readings (record_id, month_key, consumption)
VALUES ($1, $2, $3)
ON CONFLICT (record_id, month_key) DO UPDATE SET consumption = EXCLUDED.consumption`,
				recordID, month.Key, consumption); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
