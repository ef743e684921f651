package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationDueDateApproaching NotificationType = "due_date_approaching"
	NotificationTaskOverdue        NotificationType = "task_overdue"
	NotificationTaskStatusChanged  NotificationType = "task_status_changed"
	NotificationScheduled          NotificationType = "scheduled"
)

// Notification is written by the executor and owned thereafter by the
// notification UI (mark-as-read, delete). DedupKey carries the uniqueness
// invariant: task-scoped daily notifications use a (task, type, day) key so
// concurrent scans cannot insert the same alert twice; everything else uses
// the notification's own id as a non-colliding key.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;"`
	RecipientID uuid.UUID        `gorm:"type:uuid;index;not null"`
	ProjectID   uuid.UUID        `gorm:"type:uuid;index;not null"`
	Type        NotificationType `gorm:"type:varchar(50);not null"`
	Title       string           `gorm:"type:varchar(200);not null"`
	Message     string           `gorm:"type:text"`
	Priority    Priority         `gorm:"type:varchar(20);default:'medium'"`
	Metadata    datatypes.JSON   `gorm:"type:jsonb"`
	Read        bool             `gorm:"default:false"`
	DedupKey    string           `gorm:"type:varchar(120);uniqueIndex;not null"`

	CreatedAt time.Time
}

func NewNotification(recipientID, projectID uuid.UUID, typ NotificationType) *Notification {
	id := uuid.New()
	return &Notification{
		ID:          id,
		RecipientID: recipientID,
		ProjectID:   projectID,
		Type:        typ,
		Priority:    PriorityMedium,
		DedupKey:    id.String(),
	}
}

// TaskDayDedupKey builds the uniqueness key enforcing at most one
// notification per (task, type, calendar day). The day string must already
// be rendered in the scheduler's location.
func TaskDayDedupKey(taskID uuid.UUID, typ NotificationType, day string) string {
	return fmt.Sprintf("task:%s:%s:%s", taskID, typ, day)
}
