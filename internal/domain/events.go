package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationCreatedEvent is published to the realtime channel after the
// executor inserts a notification, so connected clients refresh without
// polling.
type NotificationCreatedEvent struct {
	NotificationID uuid.UUID        `json:"notification_id"`
	RecipientID    uuid.UUID        `json:"recipient_id"`
	ProjectID      uuid.UUID        `json:"project_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TaskStatusChangedEvent is published by the task CRUD surface whenever a
// task transitions; the scheduler's listener matches it against
// task_status_changed workflow definitions.
type TaskStatusChangedEvent struct {
	ProjectID  uuid.UUID  `json:"project_id"`
	TaskID     uuid.UUID  `json:"task_id"`
	TaskTitle  string     `json:"task_title"`
	FromStatus TaskStatus `json:"from_status"`
	ToStatus   TaskStatus `json:"to_status"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
}
