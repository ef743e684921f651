package domain

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskDone       TaskStatus = "done"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Task is owned by the project-management surface; the scheduler only reads it.
type Task struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	Title      string     `gorm:"type:varchar(200);not null"`
	Status     TaskStatus `gorm:"type:varchar(20);index;default:'todo'"`
	Priority   Priority   `gorm:"type:varchar(20);default:'medium'"`
	DueDate    *time.Time `gorm:"index"`
	AssigneeID *uuid.UUID `gorm:"type:uuid"`
	CreatorID  uuid.UUID  `gorm:"type:uuid;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Task) IsTerminal() bool {
	return t.Status == TaskDone
}

// Recipient resolves who task-scoped notifications go to: the assignee
// when there is one, otherwise the task creator.
func (t *Task) Recipient() uuid.UUID {
	if t.AssigneeID != nil {
		return *t.AssigneeID
	}
	return t.CreatorID
}
