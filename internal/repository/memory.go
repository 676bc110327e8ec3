package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and STORE_DRIVER=memory.
// txMu serialises scheduling transactions; mu guards the maps.
type Memory struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	interviews  map[uuid.UUID]*model.Interview
	evaluations map[uuid.UUID]map[uuid.UUID]*model.Evaluation
}

func NewMemory() *Memory {
	return &Memory{
		interviews:  make(map[uuid.UUID]*model.Interview),
		evaluations: make(map[uuid.UUID]map[uuid.UUID]*model.Evaluation),
	}
}

func (m *Memory) GetInterview(_ context.Context, interviewID uuid.UUID) (*model.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.interviews[interviewID]
	if !ok {
		return nil, ErrNotFound
	}
	return i.Clone(), nil
}

func (m *Memory) BusyWindows(_ context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busyWindowsLocked(participantIDs, from, to, exclude), nil
}

func (m *Memory) busyWindowsLocked(participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) []model.BusyWindow {
	want := make(map[uuid.UUID]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		want[id] = struct{}{}
	}

	var out []model.BusyWindow
	for _, i := range m.interviews {
		if i.Status != model.StatusScheduled {
			continue
		}
		if exclude != nil && i.InterviewID == *exclude {
			continue
		}
		end := i.EndsAt()
		if !(i.ScheduledAt.Before(to) && from.Before(end)) {
			continue
		}
		for _, p := range i.Participants {
			if _, ok := want[p.UserID]; ok {
				out = append(out, model.BusyWindow{InterviewID: i.InterviewID, UserID: p.UserID, Start: i.ScheduledAt, End: end})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].Start.Equal(out[b].Start) {
			return out[a].Start.Before(out[b].Start)
		}
		return out[a].UserID.String() < out[b].UserID.String()
	})
	return out
}

func (m *Memory) TransitionStatus(_ context.Context, interviewID uuid.UUID, from model.Status, change StatusChange) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interviews[interviewID]
	if !ok {
		return nil, ErrNotFound
	}
	if i.Status != from {
		return nil, ErrStatusChanged
	}
	i.Status = change.To
	i.UpdatedAt = change.At
	if change.To == model.StatusCompleted {
		at := change.At
		i.CompletedAt = &at
	}
	if change.CancellationReason != nil {
		reason := *change.CancellationReason
		i.CancellationReason = &reason
	}
	return i.Clone(), nil
}

func (m *Memory) SetOutcome(_ context.Context, interviewID uuid.UUID, change OutcomeChange) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interviews[interviewID]
	if !ok {
		return nil, ErrNotFound
	}
	if i.Status != model.StatusCompleted {
		return nil, ErrStatusChanged
	}
	outcome, by, at := change.Outcome, change.SetBy, change.At
	i.Outcome = &outcome
	i.OutcomeSetBy = &by
	i.OutcomeSetAt = &at
	i.UpdatedAt = at
	return i.Clone(), nil
}

func (m *Memory) UpdateNotes(_ context.Context, interviewID uuid.UUID, change NotesChange) (*model.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interviews[interviewID]
	if !ok {
		return nil, ErrNotFound
	}
	if i.Status != change.ExpectStatus {
		return nil, ErrStatusChanged
	}
	if change.SummaryNotes != nil {
		v := *change.SummaryNotes
		i.SummaryNotes = &v
	}
	if change.MeetingDetails != nil {
		v := *change.MeetingDetails
		i.MeetingDetails = &v
	}
	if change.Instructions != nil {
		v := *change.Instructions
		i.Instructions = &v
	}
	i.UpdatedAt = change.At
	return i.Clone(), nil
}

func matchesFilter(i *model.Interview, f model.InterviewFilter) bool {
	if f.Status != nil && !containsValue(*f.Status, i.Status) {
		return false
	}
	if f.Type != nil && !containsValue(*f.Type, i.Type) {
		return false
	}
	if f.Mode != nil && !containsValue(*f.Mode, i.Mode) {
		return false
	}
	if f.From != nil && i.ScheduledAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !i.ScheduledAt.Before(*f.To) {
		return false
	}
	if f.JobApplicationID != nil && i.JobApplicationID != *f.JobApplicationID {
		return false
	}
	return true
}

func containsValue[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (m *Memory) SearchInterviews(_ context.Context, q model.InterviewQuery) ([]model.Interview, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*model.Interview
	for _, i := range m.interviews {
		if !matchesFilter(i, q.Filter) {
			continue
		}
		if q.Scoped && !containsValue(q.ScopeApplicationIDs, i.JobApplicationID) && !i.HasParticipant(q.ScopeParticipantID) {
			continue
		}
		matched = append(matched, i)
	}

	sort.Slice(matched, func(a, b int) bool {
		x, y := matched[a], matched[b]
		if !x.ScheduledAt.Equal(y.ScheduledAt) {
			if q.Order == model.SortAsc {
				return x.ScheduledAt.Before(y.ScheduledAt)
			}
			return x.ScheduledAt.After(y.ScheduledAt)
		}
		return x.InterviewID.String() < y.InterviewID.String()
	})

	total := len(matched)
	start := max(0, min(q.Offset, total))
	end := start + max(0, min(q.Limit, total-start))
	out := make([]model.Interview, 0, end-start)
	for _, i := range matched[start:end] {
		c := i.Clone()
		c.Reschedules = nil
		out = append(out, *c)
	}
	return out, total, nil
}

func (m *Memory) LatestForApplication(_ context.Context, jobApplicationID uuid.UUID) (*model.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Interview
	for _, i := range m.interviews {
		if i.JobApplicationID != jobApplicationID {
			continue
		}
		if latest == nil || i.RoundNumber > latest.RoundNumber {
			latest = i
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest.Clone(), nil
}

func (m *Memory) DueForReminder(_ context.Context, from, to time.Time) ([]model.Interview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Interview
	for _, i := range m.interviews {
		if i.Status != model.StatusScheduled || i.ReminderSentAt != nil {
			continue
		}
		if i.ScheduledAt.Before(from) || !i.ScheduledAt.Before(to) {
			continue
		}
		out = append(out, *i.Clone())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ScheduledAt.Before(out[b].ScheduledAt) })
	return out, nil
}

func (m *Memory) MarkReminded(_ context.Context, interviewID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.interviews[interviewID]
	if !ok {
		return ErrNotFound
	}
	i.ReminderSentAt = &at
	return nil
}

func (m *Memory) ListEvaluations(_ context.Context, interviewID uuid.UUID) ([]model.Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Evaluation
	for _, e := range m.evaluations[interviewID] {
		out = append(out, *e)
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.Before(out[b].CreatedAt)
		}
		return out[a].EvaluatorUserID.String() < out[b].EvaluatorUserID.String()
	})
	return out, nil
}

func (m *Memory) UpsertEvaluation(_ context.Context, e *model.Evaluation) (*model.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.interviews[e.InterviewID]; !ok {
		return nil, fmt.Errorf("upsert evaluation: %w", ErrNotFound)
	}
	byEvaluator, ok := m.evaluations[e.InterviewID]
	if !ok {
		byEvaluator = make(map[uuid.UUID]*model.Evaluation)
		m.evaluations[e.InterviewID] = byEvaluator
	}

	stored := *e
	if prev, ok := byEvaluator[e.EvaluatorUserID]; ok {
		stored.EvaluationID = prev.EvaluationID
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = e.UpdatedAt
	}
	byEvaluator[e.EvaluatorUserID] = &stored
	out := stored
	return &out, nil
}

// InSchedulingTx ignores lockKeys and serialises every scheduling transaction
// behind one mutex.
func (m *Memory) InSchedulingTx(_ context.Context, _ []string, fn func(tx SchedulingTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(memoryTx{m: m})
}

type memoryTx struct {
	m *Memory
}

func (t memoryTx) GetInterview(ctx context.Context, interviewID uuid.UUID) (*model.Interview, error) {
	return t.m.GetInterview(ctx, interviewID)
}

func (t memoryTx) BusyWindows(ctx context.Context, participantIDs []uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]model.BusyWindow, error) {
	return t.m.BusyWindows(ctx, participantIDs, from, to, exclude)
}

func (t memoryTx) HasScheduledForApplication(_ context.Context, jobApplicationID uuid.UUID) (bool, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	for _, i := range t.m.interviews {
		if i.JobApplicationID == jobApplicationID && i.Status == model.StatusScheduled {
			return true, nil
		}
	}
	return false, nil
}

func (t memoryTx) MaxRoundNumber(_ context.Context, jobApplicationID uuid.UUID) (int, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()
	n := 0
	for _, i := range t.m.interviews {
		if i.JobApplicationID == jobApplicationID && i.RoundNumber > n {
			n = i.RoundNumber
		}
	}
	return n, nil
}

func (t memoryTx) InsertInterview(_ context.Context, interview *model.Interview) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if _, ok := t.m.interviews[interview.InterviewID]; ok {
		return fmt.Errorf("insert interview: %w", ErrDuplicate)
	}
	for _, i := range t.m.interviews {
		if i.JobApplicationID == interview.JobApplicationID && i.RoundNumber == interview.RoundNumber {
			return fmt.Errorf("insert interview: %w", ErrDuplicate)
		}
	}
	seen := make(map[uuid.UUID]struct{}, len(interview.Participants))
	for _, p := range interview.Participants {
		if _, ok := seen[p.UserID]; ok {
			return fmt.Errorf("insert participant: %w", ErrDuplicate)
		}
		seen[p.UserID] = struct{}{}
	}
	t.m.interviews[interview.InterviewID] = interview.Clone()
	return nil
}

func (t memoryTx) Reschedule(_ context.Context, interviewID uuid.UUID, rec model.RescheduleRecord) error {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	i, ok := t.m.interviews[interviewID]
	if !ok {
		return ErrNotFound
	}
	if i.Status != model.StatusScheduled {
		return ErrStatusChanged
	}
	i.ScheduledAt = rec.NewScheduledAt
	i.DurationMinutes = rec.NewDurationMinutes
	i.ReminderSentAt = nil
	i.UpdatedAt = rec.RescheduledAt
	i.Reschedules = append(i.Reschedules, rec)
	return nil
}

// MemoryApplications is an in-process application lookup.
type MemoryApplications struct {
	mu         sync.RWMutex
	status     map[uuid.UUID]model.ApplicationStatus
	recruiters map[uuid.UUID]uuid.UUID
}

func NewMemoryApplications() *MemoryApplications {
	return &MemoryApplications{
		status:     make(map[uuid.UUID]model.ApplicationStatus),
		recruiters: make(map[uuid.UUID]uuid.UUID),
	}
}

// Put registers an application. A nil recruiter leaves it unassigned.
func (a *MemoryApplications) Put(jobApplicationID uuid.UUID, status model.ApplicationStatus, recruiter *uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status[jobApplicationID] = status
	if recruiter != nil {
		a.recruiters[jobApplicationID] = *recruiter
	} else {
		delete(a.recruiters, jobApplicationID)
	}
}

func (a *MemoryApplications) GetApplicationStatus(_ context.Context, jobApplicationID uuid.UUID) (model.ApplicationStatus, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.status[jobApplicationID]
	if !ok {
		return "", ErrNotFound
	}
	return s, nil
}

func (a *MemoryApplications) GetAssignedRecruiter(_ context.Context, jobApplicationID uuid.UUID) (*uuid.UUID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if _, ok := a.status[jobApplicationID]; !ok {
		return nil, ErrNotFound
	}
	r, ok := a.recruiters[jobApplicationID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (a *MemoryApplications) ListAssignedApplications(_ context.Context, recruiterID uuid.UUID) ([]uuid.UUID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []uuid.UUID
	for app, r := range a.recruiters {
		if r == recruiterID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// MemoryDirectory is an in-process user directory.
type MemoryDirectory struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]model.UserProfile
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{profiles: make(map[uuid.UUID]model.UserProfile)}
}

func (d *MemoryDirectory) Put(p model.UserProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.UserID] = p
}

func (d *MemoryDirectory) GetProfiles(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.UserProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[uuid.UUID]model.UserProfile, len(ids))
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
