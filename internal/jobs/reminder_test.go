package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhishek622/interviewflow/internal/metrics"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu     sync.Mutex
	events []model.InterviewEvent
	fail   map[uuid.UUID]bool
}

func (n *fakeNotifier) NotifyInterviewEvent(_ context.Context, e model.InterviewEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[e.InterviewID] {
		return errors.New("broker unavailable")
	}
	n.events = append(n.events, e)
	return nil
}

func seed(t *testing.T, m *repository.Memory, start time.Time) *model.Interview {
	t.Helper()
	i := &model.Interview{
		InterviewID:      uuid.New(),
		JobApplicationID: uuid.New(),
		RoundNumber:      1,
		ScheduledAt:      start,
		DurationMinutes:  60,
		Type:             model.TypeTechnical,
		Mode:             model.ModeVideo,
		Status:           model.StatusScheduled,
		Participants:     []model.Participant{{UserID: uuid.New(), Role: model.ParticipantInterviewer}},
	}
	err := m.InSchedulingTx(context.Background(), nil, func(tx repository.SchedulingTx) error {
		return tx.InsertInterview(context.Background(), i)
	})
	require.NoError(t, err)
	return i
}

func newJob(store ReminderStore, n Notifier, m *metrics.Domain) *ReminderJob {
	j := NewReminderJob(store, n, ReminderConfig{Enabled: true, Schedule: "@every 1m", LeadTime: 2 * time.Hour}, nil, m)
	j.clock = func() time.Time { return now }
	return j
}

func TestRunOnceRemindsOnlyDueInterviews(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	soon := seed(t, store, now.Add(90*time.Minute))
	seed(t, store, now.Add(3*time.Hour))
	seed(t, store, now.Add(-time.Hour))

	reg := prometheus.NewRegistry()
	dm := metrics.NewDomain(reg)
	n := &fakeNotifier{}
	j := newJob(store, n, dm)

	sent, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, n.events, 1)
	assert.Equal(t, model.EventReminder, n.events[0].Type)
	assert.Equal(t, soon.InterviewID, n.events[0].InterviewID)
	assert.Nil(t, n.events[0].ActorID)

	sent, err = j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent, "already reminded")
	assert.Len(t, n.events, 1)
}

func TestRunOnceLeavesFailedPublishesForRetry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()
	i := seed(t, store, now.Add(30*time.Minute))

	reg := prometheus.NewRegistry()
	dm := metrics.NewDomain(reg)
	n := &fakeNotifier{fail: map[uuid.UUID]bool{i.InterviewID: true}}
	j := newJob(store, n, dm)

	sent, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	n.fail = nil
	sent, err = j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	got, err := store.GetInterview(ctx, i.InterviewID)
	require.NoError(t, err)
	require.NotNil(t, got.ReminderSentAt)
	assert.Equal(t, now, *got.ReminderSentAt)

	assert.Equal(t, 1.0, counterValue(t, reg, "interviewflow_reminders_sent_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "interviewflow_notification_failures_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestStartDisabledIsNoop(t *testing.T) {
	j := NewReminderJob(repository.NewMemory(), &fakeNotifier{}, ReminderConfig{Enabled: false}, nil, nil)
	require.NoError(t, j.Start())
	j.Stop(context.Background())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	j := NewReminderJob(repository.NewMemory(), &fakeNotifier{}, ReminderConfig{Enabled: true, Schedule: "whenever"}, nil, nil)
	assert.Error(t, j.Start())
}
