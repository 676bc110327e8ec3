package repository

import (
	"context"
	"testing"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySeed(t *testing.T) {
	apps, dir := NewMemoryApplications(), NewMemoryDirectory()
	n, err := ApplySeed([]byte(`
applications:
  - id: 6f1c2c1e-5d7a-4b8e-9a4f-0a1b2c3d4e5f
    status: shortlisted
    recruiter_id: 0b6d7c1a-1111-4222-8333-944455556666
users:
  - id: 0b6d7c1a-1111-4222-8333-944455556666
    name: Rita Recruiter
    email: rita@example.com
`), apps, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ctx := context.Background()
	app := uuid.MustParse("6f1c2c1e-5d7a-4b8e-9a4f-0a1b2c3d4e5f")
	rita := uuid.MustParse("0b6d7c1a-1111-4222-8333-944455556666")

	status, err := apps.GetApplicationStatus(ctx, app)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationShortlisted, status)

	recruiter, err := apps.GetAssignedRecruiter(ctx, app)
	require.NoError(t, err)
	require.NotNil(t, recruiter)
	assert.Equal(t, rita, *recruiter)

	profiles, err := dir.GetProfiles(ctx, []uuid.UUID{rita})
	require.NoError(t, err)
	assert.Equal(t, "Rita Recruiter", profiles[rita].Name)
}

func TestApplySeedRejectsMissingID(t *testing.T) {
	_, err := ApplySeed([]byte("applications:\n  - status: shortlisted\n"), NewMemoryApplications(), NewMemoryDirectory())
	assert.Error(t, err)
}
