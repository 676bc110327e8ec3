// Package scheduling is the interview workflow core: conflict detection,
// availability, the lifecycle state machine, evaluation aggregation and the
// redacted reporting views. Every operation takes the caller's ActorContext
// explicitly.
package scheduling

import (
	"context"
	"time"

	"github.com/abhishek622/interviewflow/internal/metrics"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/internal/timewindow"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationLookup is the job-application collaborator. Unknown applications
// return repository.ErrNotFound.
type ApplicationLookup interface {
	GetApplicationStatus(ctx context.Context, jobApplicationID uuid.UUID) (model.ApplicationStatus, error)
	GetAssignedRecruiter(ctx context.Context, jobApplicationID uuid.UUID) (*uuid.UUID, error)
	ListAssignedApplications(ctx context.Context, recruiterID uuid.UUID) ([]uuid.UUID, error)
}

// Directory resolves display data for users. Missing users are omitted.
type Directory interface {
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserProfile, error)
}

type Notifier interface {
	NotifyInterviewEvent(ctx context.Context, event model.InterviewEvent) error
}

type options struct {
	clock   func() time.Time
	logger  *zap.Logger
	metrics *metrics.Domain
	policy  timewindow.Policy
}

type Option func(*options)

// WithClock overrides time.Now; tests use it to pin "now".
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Domain) Option {
	return func(o *options) { o.metrics = m }
}

func WithPolicy(p timewindow.Policy) Option {
	return func(o *options) { o.policy = p }
}

func buildOptions(opts []Option) options {
	o := options{
		clock:  time.Now,
		logger: zap.NewNop(),
		policy: timewindow.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().UTC()
}

// Engine bundles the components wired over one store.
type Engine struct {
	Conflicts    *ConflictDetector
	Availability *AvailabilityComputer
	Lifecycle    *Lifecycle
	Evaluations  *EvaluationAggregator
	Reporting    *ReportingFacade
}

func New(store repository.Store, apps ApplicationLookup, dir Directory, notifier Notifier, opts ...Option) *Engine {
	o := buildOptions(opts)
	conflicts := &ConflictDetector{store: store}
	availability := &AvailabilityComputer{store: store, opts: o}
	evaluations := &EvaluationAggregator{store: store, opts: o}
	return &Engine{
		Conflicts:    conflicts,
		Availability: availability,
		Lifecycle: &Lifecycle{
			store:        store,
			apps:         apps,
			notifier:     notifier,
			availability: availability,
			opts:         o,
		},
		Evaluations: evaluations,
		Reporting: &ReportingFacade{
			store:       store,
			apps:        apps,
			dir:         dir,
			evaluations: evaluations,
			opts:        o,
		},
	}
}
