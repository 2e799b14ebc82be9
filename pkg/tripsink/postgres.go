package tripsink

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/ChicagoDave/citytraffic/pkg/simulation"
)

// TripsTable is the table the Postgres sink loads into.
const TripsTable = "trips"

const createTripsTable = `
	CREATE TABLE IF NOT EXISTS trips (
		run_id             UUID             NOT NULL,
		id                 TEXT             NOT NULL,
		type               TEXT             NOT NULL,
		wheel_count        INTEGER          NOT NULL,
		origin             TEXT             NOT NULL,
		destination        TEXT             NOT NULL,
		path               TEXT             NOT NULL,
		hour               SMALLINT         NOT NULL,
		day                INTEGER          NOT NULL,
		congestion_penalty DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, id)
	)`

// CopyColumns lists the columns filled by Row, in order.
var CopyColumns = []string{
	"run_id", "id", "type", "wheel_count", "origin", "destination",
	"path", "hour", "day", "congestion_penalty",
}

// Row maps a trip to the values of CopyColumns.
func Row(runID uuid.UUID, t simulation.Trip) []any {
	return []any{
		pgtype.UUID{Bytes: runID, Valid: true},
		t.ID,
		t.Type,
		int32(t.WheelCount),
		t.From,
		t.To,
		t.Path,
		int16(t.Hour),
		int32(t.Day),
		t.CongestionPenalty,
	}
}

// Postgres bulk-loads trips into the trips table. Every run gets its own id
// so that several runs can share the table.
type Postgres struct {
	pool  *pgxpool.Pool
	runID uuid.UUID
	rows  int64
}

// OpenPostgres connects to databaseURL and makes sure the trips table exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("tripsink.OpenPostgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("tripsink.OpenPostgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createTripsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("tripsink.OpenPostgres: create table: %w", err)
	}
	p := &Postgres{pool: pool, runID: uuid.New()}
	log.WithField("run_id", p.runID).Info("postgres trip sink ready")
	return p, nil
}

// RunID identifies the rows written by this sink.
func (p *Postgres) RunID() uuid.UUID { return p.runID }

// WriteTrips copies one batch with the COPY protocol.
func (p *Postgres) WriteTrips(ctx context.Context, trips []simulation.Trip) error {
	n, err := p.pool.CopyFrom(ctx,
		pgx.Identifier{TripsTable},
		CopyColumns,
		pgx.CopyFromSlice(len(trips), func(i int) ([]any, error) {
			return Row(p.runID, trips[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("tripsink.Postgres.WriteTrips: %w", err)
	}
	p.rows += n
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	log.WithFields(log.Fields{"run_id": p.runID, "rows": p.rows}).Info("postgres trip sink closed")
	p.pool.Close()
	return nil
}
