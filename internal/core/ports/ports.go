package ports

import (
	"context"
	"time"

	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkflowRepository reads workflow definitions for the scanner and keeps
// the LastExecuted bookkeeping for scheduled triggers.
type WorkflowRepository interface {
	// Definitions with is_active = false are never returned.
	ListActiveByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.WorkflowDefinition, error)

	UpdateLastExecuted(ctx context.Context, workflowID uuid.UUID, at time.Time) error
}

// ExecutionRepository is append-only: one Create per firing, one Finalize
// once all actions have resolved, nothing else ever.
type ExecutionRepository interface {
	Create(ctx context.Context, execution *domain.WorkflowExecution) error

	Finalize(ctx context.Context, executionID uuid.UUID, status domain.ExecutionStatus,
		executedActions datatypes.JSON, errorMessage string) error
}

// TaskRepository is the read-only view over the collaborator-owned tasks
// table. Terminal tasks are excluded by every query.
type TaskRepository interface {
	// FindDueBetween returns non-terminal tasks of a project whose due date
	// falls in [start, end), optionally narrowed to the given priorities.
	FindDueBetween(ctx context.Context, projectID uuid.UUID, start, end time.Time,
		priorities []domain.Priority) ([]domain.Task, error)

	// FindOverdue returns all non-terminal tasks due strictly before the
	// given instant, across projects.
	FindOverdue(ctx context.Context, before time.Time) ([]domain.Task, error)

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// ProjectRepository resolves project owners for schedule-based recipients.
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
}

// NotificationStore is the durable side of the notification sink.
type NotificationStore interface {
	// Insert writes the notification unless its dedup key already exists.
	// created is false when the insert was suppressed as a duplicate.
	Insert(ctx context.Context, n *domain.Notification) (created bool, err error)

	// ExistsForTaskOnDate reports whether a notification of the given type
	// already exists for the task on the given calendar day ("2006-01-02").
	ExistsForTaskOnDate(ctx context.Context, taskID uuid.UUID, typ domain.NotificationType, day string) (bool, error)
}

// NotificationPublisher is the realtime side of the notification sink.
type NotificationPublisher interface {
	PublishNotificationCreated(ctx context.Context, event domain.NotificationCreatedEvent) error
}

// TaskEventSource streams task status transitions published by the task
// CRUD surface. The returned channel closes when ctx is done.
type TaskEventSource interface {
	SubscribeToTaskEvents(ctx context.Context) (<-chan domain.TaskStatusChangedEvent, error)
}

// ScanLock serializes scheduler ticks so overlapping cron invocations
// cannot race the dedup queries.
type ScanLock interface {
	// Acquire returns false without error when another invocation holds
	// the lock.
	Acquire(ctx context.Context) (bool, error)

	Release(ctx context.Context) error
}
