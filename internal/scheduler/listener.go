package scheduler

import (
	"context"

	"renotimeline/internal/core/ports"
	"renotimeline/internal/domain"
	"renotimeline/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Listener reacts to task status transitions published by the task CRUD
// surface and routes them through task_status_changed workflow definitions.
// Unlike the scanner's polling triggers, this one is push-driven.
type Listener struct {
	source    ports.TaskEventSource
	workflows ports.WorkflowRepository
	tasks     ports.TaskRepository
	executor  *Executor
	log       *logrus.Entry
}

func NewListener(source ports.TaskEventSource, workflows ports.WorkflowRepository,
	tasks ports.TaskRepository, executor *Executor) *Listener {
	return &Listener{
		source:    source,
		workflows: workflows,
		tasks:     tasks,
		executor:  executor,
		log:       logrus.WithField("component", "listener"),
	}
}

// Start begins the listening loop. Call this in main.go as a goroutine.
func (l *Listener) Start(ctx context.Context) error {
	eventChannel, err := l.source.SubscribeToTaskEvents(ctx)
	if err != nil {
		return err
	}

	l.log.Info("listening for task status events")

	for {
		select {
		case <-ctx.Done():
			l.log.Info("listener shutting down")
			return nil

		case event, ok := <-eventChannel:
			if !ok {
				return nil
			}
			l.handleStatusChanged(ctx, event)
		}
	}
}

func (l *Listener) handleStatusChanged(ctx context.Context, event domain.TaskStatusChangedEvent) {
	log := l.log.WithFields(logrus.Fields{
		"task_id": event.TaskID,
		"to":      event.ToStatus,
	})

	definitions, err := l.workflows.ListActiveByTrigger(ctx, domain.TriggerTaskStatusChanged)
	if err != nil {
		log.WithError(err).Error("list task_status_changed workflows")
		return
	}

	for _, defn := range definitions {
		if defn.ProjectID != event.ProjectID {
			continue
		}

		cfg, err := domain.DecodeStatusChangedConfig(defn.TriggerConfig)
		if err != nil {
			log.WithField("workflow_id", defn.ID).WithError(err).Error("skipping definition with bad trigger config")
			continue
		}
		if cfg.FromStatus != "" && cfg.FromStatus != event.FromStatus {
			continue
		}
		if cfg.ToStatus != "" && cfg.ToStatus != event.ToStatus {
			continue
		}

		metrics.TriggersMatchedTotal.WithLabelValues(string(domain.TriggerTaskStatusChanged)).Inc()

		taskID := event.TaskID
		payload := domain.TriggerPayload{
			Type:         domain.TriggerTaskStatusChanged,
			WorkflowName: defn.Name,
			ProjectID:    event.ProjectID,
			RecipientID:  l.recipient(ctx, event),
			ActorID:      event.ActorID,
			TaskID:       &taskID,
			TaskTitle:    event.TaskTitle,
			FromStatus:   event.FromStatus,
			ToStatus:     event.ToStatus,
		}

		if err := l.executor.Execute(ctx, &defn, payload); err != nil {
			log.WithField("workflow_id", defn.ID).WithError(err).Error("execute workflow")
		}
	}
}

// recipient targets the user who made the change when known, otherwise the
// task's assignee or creator.
func (l *Listener) recipient(ctx context.Context, event domain.TaskStatusChangedEvent) uuid.UUID {
	if event.ActorID != nil {
		return *event.ActorID
	}
	if task, err := l.tasks.FindByID(ctx, event.TaskID); err == nil {
		return task.Recipient()
	}
	return uuid.Nil
}
