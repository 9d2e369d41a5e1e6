package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema crea la tabla si no existe. Suficiente para dev/handoff;
// en producción esto lo maneja la migración del despliegue.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS adoption_processes (
			id                TEXT PRIMARY KEY,
			source_request_id TEXT NOT NULL UNIQUE,
			pet_id            TEXT NOT NULL,
			applicant_id      TEXT NOT NULL,
			stages            JSONB NOT NULL,
			finalized         BOOLEAN NOT NULL DEFAULT FALSE,
			rejected_stage    TEXT NOT NULL DEFAULT '',
			version           BIGINT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL,
			updated_at        TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_adoption_processes_applicant
			ON adoption_processes (applicant_id);
	`)
	return err
}
