package database

import (
	"context"
	"fmt"
	"time"

	"github.com/abhishek622/interviewflow/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	pcfg.MaxConns = int32(cfg.MaxOpenConns)
	pcfg.MinConns = int32(cfg.MaxIdleConns / 5)
	pcfg.MaxConnIdleTime = cfg.MaxIdleTime
	pcfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// users and job_applications belong to other services; they are created here
// only so a fresh database can serve the read paths.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS job_applications (
	id UUID PRIMARY KEY,
	status TEXT NOT NULL,
	assigned_recruiter_id UUID
)`,
	`CREATE INDEX IF NOT EXISTS idx_job_applications_recruiter ON job_applications (assigned_recruiter_id)`,
	`CREATE TABLE IF NOT EXISTS interviews (
	interview_id UUID PRIMARY KEY,
	job_application_id UUID NOT NULL,
	round_number INT NOT NULL CHECK (round_number > 0),
	scheduled_at TIMESTAMPTZ NOT NULL,
	duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
	status TEXT NOT NULL CHECK (status IN ('scheduled', 'completed', 'cancelled', 'no_show')),
	type TEXT NOT NULL,
	mode TEXT NOT NULL,
	outcome TEXT CHECK (outcome IN ('pass', 'fail', 'pending')),
	summary_notes TEXT,
	meeting_details TEXT,
	instructions TEXT,
	cancellation_reason TEXT,
	scheduled_by UUID NOT NULL,
	outcome_set_by UUID,
	outcome_set_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	reminder_sent_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (job_application_id, round_number),
	CHECK (outcome IS NULL OR status = 'completed')
)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_status_scheduled_at ON interviews (status, scheduled_at)`,
	`CREATE TABLE IF NOT EXISTS interview_participants (
	interview_id UUID NOT NULL REFERENCES interviews (interview_id),
	user_id UUID NOT NULL,
	role TEXT NOT NULL,
	is_lead BOOLEAN NOT NULL DEFAULT false,
	PRIMARY KEY (interview_id, user_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_interview_participants_user ON interview_participants (user_id)`,
	`CREATE TABLE IF NOT EXISTS interview_reschedules (
	id BIGSERIAL PRIMARY KEY,
	interview_id UUID NOT NULL REFERENCES interviews (interview_id),
	previous_scheduled_at TIMESTAMPTZ NOT NULL,
	previous_duration_minutes INT NOT NULL,
	new_scheduled_at TIMESTAMPTZ NOT NULL,
	new_duration_minutes INT NOT NULL,
	rescheduled_by UUID NOT NULL,
	rescheduled_at TIMESTAMPTZ NOT NULL,
	reason TEXT
)`,
	`CREATE TABLE IF NOT EXISTS evaluations (
	evaluation_id UUID PRIMARY KEY,
	interview_id UUID NOT NULL REFERENCES interviews (interview_id),
	evaluator_user_id UUID NOT NULL,
	overall_rating INT CHECK (overall_rating BETWEEN 1 AND 5),
	recommendation TEXT NOT NULL,
	strengths TEXT,
	concerns TEXT,
	additional_comments TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (interview_id, evaluator_user_id)
)`,
}

// Migrate applies the schema in a single transaction. Every statement is
// idempotent so it runs on each start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for n, stmt := range migrations {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", n+1, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
