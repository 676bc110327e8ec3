package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobApplicationRepository reads the job_applications table owned by the
// applications service. Nothing here writes to it.
type JobApplicationRepository struct {
	db *pgxpool.Pool
}

func (r *JobApplicationRepository) GetApplicationStatus(ctx context.Context, jobApplicationID uuid.UUID) (model.ApplicationStatus, error) {
	const q = `SELECT status FROM job_applications WHERE id = $1`
	var status model.ApplicationStatus
	if err := r.db.QueryRow(ctx, q, jobApplicationID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("scan application status: %w", err)
	}
	return status, nil
}

// GetAssignedRecruiter returns nil when the application has no recruiter.
func (r *JobApplicationRepository) GetAssignedRecruiter(ctx context.Context, jobApplicationID uuid.UUID) (*uuid.UUID, error) {
	const q = `SELECT assigned_recruiter_id FROM job_applications WHERE id = $1`
	var recruiter *uuid.UUID
	if err := r.db.QueryRow(ctx, q, jobApplicationID).Scan(&recruiter); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan assigned recruiter: %w", err)
	}
	return recruiter, nil
}

func (r *JobApplicationRepository) ListAssignedApplications(ctx context.Context, recruiterID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT id FROM job_applications WHERE assigned_recruiter_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, q, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("query assigned applications: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan application id: %w", err)
		}
		out = append(out, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}
