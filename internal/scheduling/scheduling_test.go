package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.InterviewEvent
	err    error
}

func (n *recordingNotifier) NotifyInterviewEvent(_ context.Context, e model.InterviewEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) types() []model.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]model.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *repository.Memory
	apps     *repository.MemoryApplications
	dir      *repository.MemoryDirectory
	notifier *recordingNotifier
	engine   *Engine

	admin     model.ActorContext
	recruiter model.ActorContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     repository.NewMemory(),
		apps:      repository.NewMemoryApplications(),
		dir:       repository.NewMemoryDirectory(),
		notifier:  &recordingNotifier{},
		admin:     model.ActorContext{UserID: uuid.New(), Roles: []model.UserRole{model.RoleAdmin}},
		recruiter: model.ActorContext{UserID: uuid.New(), Roles: []model.UserRole{model.RoleRecruiter}},
	}
	f.engine = New(f.store, f.apps, f.dir, f.notifier, WithClock(func() time.Time { return refNow }))
	return f
}

// application registers an application that may be interviewed, assigned to
// the fixture recruiter.
func (f *fixture) application() uuid.UUID {
	id := uuid.New()
	f.apps.Put(id, model.ApplicationShortlisted, &f.recruiter.UserID)
	return id
}

func actorFor(id uuid.UUID, roles ...model.UserRole) model.ActorContext {
	return model.ActorContext{UserID: id, Roles: roles}
}

func interviewers(ids ...uuid.UUID) []model.ParticipantReq {
	out := make([]model.ParticipantReq, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.ParticipantReq{UserID: id, Role: model.ParticipantInterviewer})
	}
	return out
}

func (f *fixture) schedule(t *testing.T, app uuid.UUID, start time.Time, minutes int, participants []model.ParticipantReq) (*model.Interview, error) {
	t.Helper()
	return f.engine.Lifecycle.Schedule(context.Background(), f.admin, model.ScheduleInterviewReq{
		JobApplicationID: app,
		ScheduledAt:      start,
		DurationMinutes:  minutes,
		Type:             model.TypeTechnical,
		Mode:             model.ModeVideo,
		Participants:     participants,
	})
}

func (f *fixture) mustSchedule(t *testing.T, app uuid.UUID, start time.Time, minutes int, participants []model.ParticipantReq) *model.Interview {
	t.Helper()
	i, err := f.schedule(t, app, start, minutes, participants)
	require.NoError(t, err)
	return i
}

func asConflict(t *testing.T, err error) *apperr.ConflictError {
	t.Helper()
	var cerr *apperr.ConflictError
	require.True(t, errors.As(err, &cerr), "expected ConflictError, got %v", err)
	return cerr
}

func asState(t *testing.T, err error) *apperr.StateError {
	t.Helper()
	var serr *apperr.StateError
	require.True(t, errors.As(err, &serr), "expected StateError, got %v", err)
	return serr
}

func isForbidden(err error) bool {
	var ferr *apperr.ForbiddenError
	return errors.As(err, &ferr)
}
