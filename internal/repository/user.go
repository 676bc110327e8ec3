package repository

import (
	"context"
	"fmt"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository reads display profiles from the users table.
type UserRepository struct {
	db *pgxpool.Pool
}

// GetProfiles returns the profiles it could find, keyed by user id. Unknown
// ids are simply absent from the map.
func (r *UserRepository) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserProfile, error) {
	out := make(map[uuid.UUID]model.UserProfile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
SELECT id, name, email
FROM users
WHERE id = ANY($1::uuid[])
`
	rows, err := r.db.Query(ctx, q, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.UserProfile
		if err := rows.Scan(&u.UserID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out[u.UserID] = u
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}
	return out, nil
}
