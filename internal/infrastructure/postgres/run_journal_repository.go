package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/kaspi-sync/internal/domain/entity"
)

// RunJournalRepository persiste el desenlace de cada pasada de
// sincronización. Solo desenlaces: nunca stock histórico.
type RunJournalRepository struct {
	pool *pgxpool.Pool
}

// NewRunJournalRepository crea el repositorio.
func NewRunJournalRepository(pool *pgxpool.Pool) *RunJournalRepository {
	return &RunJournalRepository{pool: pool}
}

// EnsureSchema crea la tabla del diario si no existe.
func (r *RunJournalRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_runs (
			id           UUID PRIMARY KEY,
			started_at   TIMESTAMPTZ NOT NULL,
			finished_at  TIMESTAMPTZ NOT NULL,
			status       TEXT NOT NULL,
			offers       INTEGER NOT NULL DEFAULT 0,
			skipped_zero INTEGER NOT NULL DEFAULT 0,
			total_value  NUMERIC(18,2) NOT NULL DEFAULT 0,
			digest       TEXT NOT NULL DEFAULT '',
			message      TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("crear tabla sync_runs: %w", err)
	}
	return nil
}

// Record inserta el desenlace de una pasada.
func (r *RunJournalRepository) Record(ctx context.Context, run entity.SyncRun) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sync_runs
			(id, started_at, finished_at, status, offers, skipped_zero, total_value, digest, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Status,
		run.Offers, run.SkippedZero, run.TotalValue, run.Digest, run.Message,
	)
	if err != nil {
		return fmt.Errorf("insertar sync_run %s: %w", run.ID, err)
	}
	return nil
}
