package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TriggerType string

const (
	TriggerDueDateApproaching TriggerType = "due_date_approaching"
	TriggerScheduled          TriggerType = "scheduled"
	TriggerTaskStatusChanged  TriggerType = "task_status_changed"
)

// WorkflowDefinition is a user-configured rule pairing a trigger condition
// with an ordered list of actions. Created and edited elsewhere; the
// scheduler consumes it read-only, except for LastExecuted bookkeeping on
// scheduled triggers.
type WorkflowDefinition struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;"`
	ProjectID     uuid.UUID      `gorm:"type:uuid;index;not null"`
	Name          string         `gorm:"type:varchar(200);not null"`
	TriggerType   TriggerType    `gorm:"type:varchar(50);index;not null"`
	TriggerConfig datatypes.JSON `gorm:"type:jsonb"`
	Actions       datatypes.JSON `gorm:"type:jsonb"`
	IsActive      bool           `gorm:"index;default:true"`
	LastExecuted  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- TRIGGER CONFIG ---

// DueDateTriggerConfig configures a due_date_approaching trigger. A task
// matches when its due date falls exactly DaysBefore days from today.
type DueDateTriggerConfig struct {
	DaysBefore     int        `json:"days_before"`
	PriorityFilter []Priority `json:"priority_filter,omitempty"`
}

type ScheduleType string

const (
	ScheduleDaily  ScheduleType = "daily"
	ScheduleWeekly ScheduleType = "weekly"
)

// ScheduleTriggerConfig configures a scheduled trigger. ScheduleTime is
// "HH:MM" in the scheduler's configured location. Weekdays applies to
// weekly schedules only; empty means every day of the week.
type ScheduleTriggerConfig struct {
	ScheduleType ScheduleType   `json:"schedule_type"`
	ScheduleTime string         `json:"schedule_time"`
	Weekdays     []time.Weekday `json:"weekdays,omitempty"`
}

// StatusChangedTriggerConfig configures a task_status_changed trigger.
// Empty FromStatus/ToStatus match any transition.
type StatusChangedTriggerConfig struct {
	FromStatus TaskStatus `json:"from_status,omitempty"`
	ToStatus   TaskStatus `json:"to_status,omitempty"`
}

// DecodeDueDateConfig parses a due-date trigger config, substituting the
// default of one day when days_before is missing or non-positive.
func DecodeDueDateConfig(raw datatypes.JSON) (DueDateTriggerConfig, error) {
	cfg := DueDateTriggerConfig{DaysBefore: 1}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode due_date trigger config: %w", err)
	}
	if cfg.DaysBefore <= 0 {
		cfg.DaysBefore = 1
	}
	return cfg, nil
}

func DecodeScheduleConfig(raw datatypes.JSON) (ScheduleTriggerConfig, error) {
	var cfg ScheduleTriggerConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode schedule trigger config: %w", err)
	}
	if cfg.ScheduleType == "" {
		cfg.ScheduleType = ScheduleDaily
	}
	if cfg.ScheduleType != ScheduleDaily && cfg.ScheduleType != ScheduleWeekly {
		return cfg, fmt.Errorf("unsupported schedule_type %q", cfg.ScheduleType)
	}
	if _, _, err := ParseScheduleTime(cfg.ScheduleTime); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func DecodeStatusChangedConfig(raw datatypes.JSON) (StatusChangedTriggerConfig, error) {
	var cfg StatusChangedTriggerConfig
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode status_changed trigger config: %w", err)
	}
	return cfg, nil
}

// ParseScheduleTime parses an "HH:MM" schedule time.
func ParseScheduleTime(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%02d:%02d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid schedule_time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid schedule_time %q", s)
	}
	return hour, minute, nil
}

// Matches reports whether a priority passes the filter. An empty filter
// matches everything.
func (c DueDateTriggerConfig) Matches(p Priority) bool {
	if len(c.PriorityFilter) == 0 {
		return true
	}
	for _, f := range c.PriorityFilter {
		if f == p {
			return true
		}
	}
	return false
}

// --- ACTIONS ---

type ActionKind string

const (
	ActionSendNotification ActionKind = "send_notification"
)

// Action is a closed union of the effects a workflow can perform. Unknown
// action types fail decoding loudly instead of being silently skipped.
type Action interface {
	Kind() ActionKind
}

type SendNotificationAction struct {
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

func (SendNotificationAction) Kind() ActionKind { return ActionSendNotification }

type UnsupportedActionError struct {
	Type string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("unsupported action type %q", e.Type)
}

// DecodeActions parses the definition's ordered actions array into the
// closed union. The first unknown type aborts with UnsupportedActionError.
func DecodeActions(raw datatypes.JSON) ([]Action, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	actions := make([]Action, 0, len(entries))
	for i, entry := range entries {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(entry, &tag); err != nil {
			return nil, fmt.Errorf("decode action %d: %w", i, err)
		}
		switch ActionKind(tag.Type) {
		case ActionSendNotification:
			var a SendNotificationAction
			if err := json.Unmarshal(entry, &a); err != nil {
				return nil, fmt.Errorf("decode action %d: %w", i, err)
			}
			actions = append(actions, a)
		default:
			return nil, &UnsupportedActionError{Type: tag.Type}
		}
	}
	return actions, nil
}

// --- EXECUTION ---

type ExecutionStatus string

const (
	ExecutionPending ExecutionStatus = "pending"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
)

// WorkflowExecution is the append-only audit record of one workflow firing.
// It is created pending, finalized exactly once after all actions resolve,
// and never touched again. WorkflowID is a soft reference: the definition
// may be deleted later without invalidating history.
type WorkflowExecution struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;"`
	WorkflowID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Status          ExecutionStatus `gorm:"type:varchar(20);default:'pending'"`
	TriggerSnapshot datatypes.JSON  `gorm:"type:jsonb"`
	ExecutedActions datatypes.JSON  `gorm:"type:jsonb"`
	ErrorMessage    string          `gorm:"type:text"`
	ExecutedAt      time.Time       `gorm:"index;not null"`
}

func NewExecution(workflowID uuid.UUID, snapshot datatypes.JSON, at time.Time) *WorkflowExecution {
	return &WorkflowExecution{
		ID:              uuid.New(),
		WorkflowID:      workflowID,
		Status:          ExecutionPending,
		TriggerSnapshot: snapshot,
		ExecutedAt:      at,
	}
}

// ActionResult records the outcome of a single action within an execution.
type ActionResult struct {
	Type   ActionKind `json:"type"`
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// TriggerPayload is the input data that caused an execution, snapshotted
// verbatim into the execution record.
type TriggerPayload struct {
	Type         TriggerType `json:"type"`
	WorkflowName string      `json:"workflow_name,omitempty"`
	ProjectID    uuid.UUID   `json:"project_id"`
	RecipientID  uuid.UUID   `json:"recipient_id"`
	ActorID      *uuid.UUID  `json:"actor_id,omitempty"`

	TaskID       *uuid.UUID `json:"task_id,omitempty"`
	TaskTitle    string     `json:"task_title,omitempty"`
	TaskPriority Priority   `json:"task_priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	DaysUntilDue int        `json:"days_until_due,omitempty"`
	FromStatus   TaskStatus `json:"from_status,omitempty"`
	ToStatus     TaskStatus `json:"to_status,omitempty"`

	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}
