package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"renotimeline/internal/core/ports"
	"renotimeline/internal/domain"
	"renotimeline/internal/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Executor turns one (definition, trigger payload) pair into exactly one
// execution record plus the definition's actions. The record is written
// pending first and finalized only after every action has resolved, so the
// audit log never claims success for a run that half-failed.
type Executor struct {
	executions    ports.ExecutionRepository
	workflows     ports.WorkflowRepository
	notifications ports.NotificationStore
	publisher     ports.NotificationPublisher
	clock         Clock
	log           *logrus.Entry
}

func NewExecutor(
	executions ports.ExecutionRepository,
	workflows ports.WorkflowRepository,
	notifications ports.NotificationStore,
	publisher ports.NotificationPublisher,
	clock Clock,
) *Executor {
	return &Executor{
		executions:    executions,
		workflows:     workflows,
		notifications: notifications,
		publisher:     publisher,
		clock:         clock,
		log:           logrus.WithField("component", "executor"),
	}
}

// Execute runs one firing of the given definition. An error is returned
// when the execution finalized as failed or could not be recorded at all;
// per-action details are in the execution record either way.
func (e *Executor) Execute(ctx context.Context, defn *domain.WorkflowDefinition, payload domain.TriggerPayload) error {
	now := e.clock.Now()

	snapshot, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal trigger snapshot: %w", err)
	}

	execution := domain.NewExecution(defn.ID, snapshot, now)
	if err := e.executions.Create(ctx, execution); err != nil {
		return fmt.Errorf("create execution for workflow %s: %w", defn.ID, err)
	}

	actions, err := domain.DecodeActions(defn.Actions)
	if err != nil {
		return e.finalize(ctx, execution, nil, err)
	}

	var results []domain.ActionResult
	var firstErr error
	for _, action := range actions {
		result := domain.ActionResult{Type: action.Kind(), Status: "success"}

		if err := e.runAction(ctx, defn, payload, action); err != nil {
			result.Status = "failed"
			result.Error = err.Error()
			if firstErr == nil {
				firstErr = err
			}
			e.log.WithFields(logrus.Fields{
				"workflow_id": defn.ID,
				"action":      action.Kind(),
			}).WithError(err).Error("action failed")
		}

		results = append(results, result)
	}

	if err := e.finalize(ctx, execution, results, firstErr); err != nil {
		return err
	}

	// The LastExecuted stamp is the sole guard against a scheduled
	// definition re-firing within the same calendar day, so it is only
	// written after a fully successful run.
	if firstErr == nil && defn.TriggerType == domain.TriggerScheduled {
		if err := e.workflows.UpdateLastExecuted(ctx, defn.ID, now); err != nil {
			return fmt.Errorf("update last_executed for workflow %s: %w", defn.ID, err)
		}
	}

	return nil
}

func (e *Executor) finalize(ctx context.Context, execution *domain.WorkflowExecution,
	results []domain.ActionResult, actionErr error) error {

	status := domain.ExecutionSuccess
	errorMessage := ""
	if actionErr != nil {
		status = domain.ExecutionFailed
		errorMessage = actionErr.Error()
	}

	var executed datatypes.JSON
	if len(results) > 0 {
		executed, _ = json.Marshal(results)
	}

	if err := e.executions.Finalize(ctx, execution.ID, status, executed, errorMessage); err != nil {
		return fmt.Errorf("finalize execution %s: %w", execution.ID, err)
	}

	metrics.ExecutionsTotal.WithLabelValues(string(status)).Inc()

	if actionErr != nil {
		return fmt.Errorf("workflow %s execution failed: %w", execution.WorkflowID, actionErr)
	}
	return nil
}

func (e *Executor) runAction(ctx context.Context, defn *domain.WorkflowDefinition,
	payload domain.TriggerPayload, action domain.Action) error {

	switch a := action.(type) {
	case domain.SendNotificationAction:
		return e.sendNotification(ctx, defn, payload, a)
	default:
		// DecodeActions already rejects unknown tags; this covers union
		// members added without an executor branch.
		return &domain.UnsupportedActionError{Type: string(action.Kind())}
	}
}

func (e *Executor) sendNotification(ctx context.Context, defn *domain.WorkflowDefinition,
	payload domain.TriggerPayload, action domain.SendNotificationAction) error {

	notification := domain.NewNotification(payload.RecipientID, payload.ProjectID, notificationType(payload.Type))
	notification.Title = action.Title
	notification.Message = action.Message
	if action.Priority != "" {
		notification.Priority = action.Priority
	}

	if notification.Title == "" {
		notification.Title = defn.Name
	}
	if notification.Message == "" {
		notification.Message = defaultMessage(defn, payload)
	}

	// Due-date alerts carry the per-task daily uniqueness invariant.
	if payload.Type == domain.TriggerDueDateApproaching && payload.TaskID != nil {
		notification.DedupKey = domain.TaskDayDedupKey(*payload.TaskID,
			notification.Type, dayKey(e.clock.Now(), e.clock.Location()))
	}

	metadata := map[string]interface{}{"workflow_id": defn.ID}
	if payload.TaskID != nil {
		metadata["task_id"] = *payload.TaskID
	}
	notification.Metadata, _ = json.Marshal(metadata)

	created, err := e.notifications.Insert(ctx, notification)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if !created {
		metrics.DuplicatesSuppressedTotal.Inc()
		e.log.WithField("dedup_key", notification.DedupKey).Debug("duplicate notification suppressed")
		return nil
	}

	metrics.NotificationsCreatedTotal.Inc()

	if err := e.publisher.PublishNotificationCreated(ctx, domain.NotificationCreatedEvent{
		NotificationID: notification.ID,
		RecipientID:    notification.RecipientID,
		ProjectID:      notification.ProjectID,
		Type:           notification.Type,
		Title:          notification.Title,
		CreatedAt:      e.clock.Now(),
	}); err != nil {
		// The row is durable; a missed realtime ping only delays the UI
		// until its next fetch.
		e.log.WithError(err).Warn("publish notification event")
	}

	return nil
}

func notificationType(trigger domain.TriggerType) domain.NotificationType {
	switch trigger {
	case domain.TriggerDueDateApproaching:
		return domain.NotificationDueDateApproaching
	case domain.TriggerTaskStatusChanged:
		return domain.NotificationTaskStatusChanged
	default:
		return domain.NotificationScheduled
	}
}

func defaultMessage(defn *domain.WorkflowDefinition, payload domain.TriggerPayload) string {
	switch payload.Type {
	case domain.TriggerDueDateApproaching:
		return fmt.Sprintf("%q is due in %d day(s)", payload.TaskTitle, payload.DaysUntilDue)
	case domain.TriggerTaskStatusChanged:
		return fmt.Sprintf("%q moved from %s to %s", payload.TaskTitle, payload.FromStatus, payload.ToStatus)
	default:
		return fmt.Sprintf("Workflow %q ran on schedule", defn.Name)
	}
}
