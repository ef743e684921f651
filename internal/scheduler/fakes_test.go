package scheduler

import (
	"context"
	"errors"
	"time"

	"renotimeline/internal/core/ports"
	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// fixedClock pins the tick instant for deterministic scans.
type fixedClock struct {
	now time.Time
	loc *time.Location
}

func (c *fixedClock) Now() time.Time { return c.now.In(c.loc) }
func (c *fixedClock) Location() *time.Location { return c.loc }

type fakeWorkflowRepo struct {
	definitions []*domain.WorkflowDefinition
	listErr     error
}

func (r *fakeWorkflowRepo) ListActiveByTrigger(_ context.Context, trigger domain.TriggerType) ([]domain.WorkflowDefinition, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.WorkflowDefinition
	for _, d := range r.definitions {
		if d.TriggerType == trigger && d.IsActive {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) UpdateLastExecuted(_ context.Context, workflowID uuid.UUID, at time.Time) error {
	for _, d := range r.definitions {
		if d.ID == workflowID {
			t := at
			d.LastExecuted = &t
			return nil
		}
	}
	return errors.New("workflow not found")
}

type fakeExecutionRepo struct {
	executions []*domain.WorkflowExecution
	createErr  error
}

func (r *fakeExecutionRepo) Create(_ context.Context, execution *domain.WorkflowExecution) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *execution
	r.executions = append(r.executions, &copied)
	return nil
}

func (r *fakeExecutionRepo) Finalize(_ context.Context, executionID uuid.UUID, status domain.ExecutionStatus,
	executedActions datatypes.JSON, errorMessage string) error {
	for _, e := range r.executions {
		if e.ID == executionID {
			if e.Status != domain.ExecutionPending {
				return errors.New("execution already finalized")
			}
			e.Status = status
			e.ExecutedActions = executedActions
			e.ErrorMessage = errorMessage
			return nil
		}
	}
	return errors.New("execution not found")
}

type fakeTaskRepo struct {
	tasks []domain.Task
}

func (r *fakeTaskRepo) FindDueBetween(_ context.Context, projectID uuid.UUID, start, end time.Time,
	priorities []domain.Priority) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if t.ProjectID != projectID || t.IsTerminal() || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(start) || !t.DueDate.Before(end) {
			continue
		}
		if len(priorities) > 0 && !containsPriority(priorities, t.Priority) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTaskRepo) FindOverdue(_ context.Context, before time.Time) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if t.IsTerminal() || t.DueDate == nil || !t.DueDate.Before(before) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return &r.tasks[i], nil
		}
	}
	return nil, errors.New("task not found")
}

func containsPriority(priorities []domain.Priority, p domain.Priority) bool {
	for _, candidate := range priorities {
		if candidate == p {
			return true
		}
	}
	return false
}

type fakeProjectRepo struct {
	projects map[uuid.UUID]*domain.Project
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	if p, ok := r.projects[id]; ok {
		return p, nil
	}
	return nil, errors.New("project not found")
}

type fakeNotificationStore struct {
	notifications []*domain.Notification
	insertErr     error
}

func (s *fakeNotificationStore) Insert(_ context.Context, n *domain.Notification) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	for _, existing := range s.notifications {
		if existing.DedupKey == n.DedupKey {
			return false, nil
		}
	}
	copied := *n
	s.notifications = append(s.notifications, &copied)
	return true, nil
}

func (s *fakeNotificationStore) ExistsForTaskOnDate(_ context.Context, taskID uuid.UUID,
	typ domain.NotificationType, day string) (bool, error) {
	key := domain.TaskDayDedupKey(taskID, typ, day)
	for _, existing := range s.notifications {
		if existing.DedupKey == key {
			return true, nil
		}
	}
	return false, nil
}

type fakePublisher struct {
	events []domain.NotificationCreatedEvent
}

func (p *fakePublisher) PublishNotificationCreated(_ context.Context, event domain.NotificationCreatedEvent) error {
	p.events = append(p.events, event)
	return nil
}

type fakeLock struct {
	held     bool
	releases int
}

func (l *fakeLock) Acquire(_ context.Context) (bool, error) {
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(_ context.Context) error {
	l.held = false
	l.releases++
	return nil
}

var _ ports.WorkflowRepository = (*fakeWorkflowRepo)(nil)
var _ ports.ExecutionRepository = (*fakeExecutionRepo)(nil)
var _ ports.TaskRepository = (*fakeTaskRepo)(nil)
var _ ports.ProjectRepository = (*fakeProjectRepo)(nil)
var _ ports.NotificationStore = (*fakeNotificationStore)(nil)
var _ ports.NotificationPublisher = (*fakePublisher)(nil)
var _ ports.ScanLock = (*fakeLock)(nil)
