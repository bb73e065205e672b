// Package postgres archives flux estimates for later analysis. The Kafka
// sink remains the primary output; this store is an optional secondary
// loader enabled by POSTGRES_DSN.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/gampnico/scintillometry-tools/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS flux_estimates (
	id                 TEXT PRIMARY KEY,
	station            TEXT NOT NULL,
	measured_at        TIMESTAMPTZ NOT NULL,
	averaging_seconds  DOUBLE PRECISION NOT NULL,
	cn2                DOUBLE PRECISION NOT NULL,
	ct2                DOUBLE PRECISION NOT NULL,
	effective_height   DOUBLE PRECISION NOT NULL,
	temperature        DOUBLE PRECISION NOT NULL,
	pressure           DOUBLE PRECISION NOT NULL,
	sensible_heat_flux DOUBLE PRECISION NOT NULL,
	weather_source     TEXT NOT NULL DEFAULT '',
	processed_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS flux_estimates_station_measured_at
	ON flux_estimates (station, measured_at);
`

const insertEstimate = `
INSERT INTO flux_estimates (
	id, station, measured_at, averaging_seconds, cn2, ct2,
	effective_height, temperature, pressure, sensible_heat_flux,
	weather_source, processed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

// Store implements pipeline.BatchLoader over PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to PostgreSQL, verifies the connection, and ensures the
// flux_estimates table exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// LoadBatch inserts the batch in one transaction. Replayed estimates are
// skipped on their deterministic IDs.
func (s *Store) LoadBatch(ctx context.Context, estimates []domain.FluxEstimate) error {
	if len(estimates) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEstimate)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range estimates {
		if _, err := stmt.ExecContext(ctx, insertArgs(e)...); err != nil {
			return fmt.Errorf("insert estimate %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// insertArgs maps a FluxEstimate onto the insert statement's placeholders.
func insertArgs(e domain.FluxEstimate) []any {
	return []any{
		e.ID,
		e.Station,
		e.Time,
		e.Averaging.Seconds(),
		e.Cn2,
		e.CT2,
		e.EffectiveHeight,
		e.Temperature,
		e.Pressure,
		e.SensibleHeatFlux,
		e.WeatherSource,
		e.ProcessedAt,
	}
}
