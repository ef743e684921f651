package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"renotimeline/internal/core/ports"
	"renotimeline/internal/domain"
	"renotimeline/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ErrScanInProgress is returned by Run when another invocation holds the
// scan lock; the caller reports it as a no-op, not a failure.
var ErrScanInProgress = errors.New("a scheduler scan is already in progress")

// Scanner discovers (workflow, entity) pairs whose trigger condition is
// newly satisfied and hands each to the executor. One invocation processes
// everything sequentially; per-item failures are logged and skipped so a
// bad definition never starves its neighbors.
type Scanner struct {
	workflows     ports.WorkflowRepository
	tasks         ports.TaskRepository
	projects      ports.ProjectRepository
	notifications ports.NotificationStore
	publisher     ports.NotificationPublisher
	executor      *Executor
	lock          ports.ScanLock
	clock         Clock
	window        time.Duration
	log           *logrus.Entry
}

func NewScanner(
	workflows ports.WorkflowRepository,
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	notifications ports.NotificationStore,
	publisher ports.NotificationPublisher,
	executor *Executor,
	lock ports.ScanLock,
	clock Clock,
	window time.Duration,
) *Scanner {
	return &Scanner{
		workflows:     workflows,
		tasks:         tasks,
		projects:      projects,
		notifications: notifications,
		publisher:     publisher,
		executor:      executor,
		lock:          lock,
		clock:         clock,
		window:        window,
		log:           logrus.WithField("component", "scanner"),
	}
}

// Run executes one full scheduler tick under the single-flight lock.
func (s *Scanner) Run(ctx context.Context) error {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire scan lock: %w", err)
	}
	if !acquired {
		return ErrScanInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.WithError(err).Warn("release scan lock")
		}
	}()

	return errors.Join(
		s.ScanDueDateApproaching(ctx),
		s.ScanScheduled(ctx),
		s.ScanOverdue(ctx),
	)
}

// ScanDueDateApproaching fires due_date_approaching definitions for every
// non-terminal task due exactly days_before days from today.
func (s *Scanner) ScanDueDateApproaching(ctx context.Context) error {
	metrics.ScansTotal.WithLabelValues(string(domain.TriggerDueDateApproaching)).Inc()

	definitions, err := s.workflows.ListActiveByTrigger(ctx, domain.TriggerDueDateApproaching)
	if err != nil {
		metrics.ScanErrorsTotal.WithLabelValues(string(domain.TriggerDueDateApproaching)).Inc()
		return fmt.Errorf("list due_date_approaching workflows: %w", err)
	}

	now := s.clock.Now()
	loc := s.clock.Location()

	for _, defn := range definitions {
		log := s.log.WithField("workflow_id", defn.ID)

		cfg, err := domain.DecodeDueDateConfig(defn.TriggerConfig)
		if err != nil {
			log.WithError(err).Error("skipping definition with bad trigger config")
			continue
		}

		// Exact-day match: [today+d, today+d+1) in the scheduler location.
		start := dayStart(now, loc).AddDate(0, 0, cfg.DaysBefore)
		end := start.AddDate(0, 0, 1)

		matched, err := s.tasks.FindDueBetween(ctx, defn.ProjectID, start, end, cfg.PriorityFilter)
		if err != nil {
			log.WithError(err).Error("query due tasks")
			continue
		}

		for _, task := range matched {
			metrics.TriggersMatchedTotal.WithLabelValues(string(domain.TriggerDueDateApproaching)).Inc()

			taskID := task.ID
			dueDate := task.DueDate
			payload := domain.TriggerPayload{
				Type:         domain.TriggerDueDateApproaching,
				WorkflowName: defn.Name,
				ProjectID:    defn.ProjectID,
				RecipientID:  task.Recipient(),
				TaskID:       &taskID,
				TaskTitle:    task.Title,
				TaskPriority: task.Priority,
				DueDate:      dueDate,
				DaysUntilDue: cfg.DaysBefore,
			}

			if err := s.executor.Execute(ctx, &defn, payload); err != nil {
				log.WithField("task_id", task.ID).WithError(err).Error("execute workflow")
			}
		}
	}

	return nil
}

// ScanScheduled fires scheduled definitions whose configured time of day
// has been entered within the window and that have not run yet today.
func (s *Scanner) ScanScheduled(ctx context.Context) error {
	metrics.ScansTotal.WithLabelValues(string(domain.TriggerScheduled)).Inc()

	definitions, err := s.workflows.ListActiveByTrigger(ctx, domain.TriggerScheduled)
	if err != nil {
		metrics.ScanErrorsTotal.WithLabelValues(string(domain.TriggerScheduled)).Inc()
		return fmt.Errorf("list scheduled workflows: %w", err)
	}

	now := s.clock.Now()
	loc := s.clock.Location()

	for _, defn := range definitions {
		log := s.log.WithField("workflow_id", defn.ID)

		cfg, err := domain.DecodeScheduleConfig(defn.TriggerConfig)
		if err != nil {
			log.WithError(err).Error("skipping definition with bad trigger config")
			continue
		}

		scheduledFor, due := s.scheduleDue(cfg, now, loc)
		if !due {
			continue
		}
		if defn.LastExecuted != nil && sameDay(*defn.LastExecuted, now, loc) {
			continue // already fired today
		}

		owner, err := s.scheduleRecipient(ctx, defn.ProjectID)
		if err != nil {
			log.WithError(err).Error("resolve project owner")
			continue
		}

		metrics.TriggersMatchedTotal.WithLabelValues(string(domain.TriggerScheduled)).Inc()

		payload := domain.TriggerPayload{
			Type:         domain.TriggerScheduled,
			WorkflowName: defn.Name,
			ProjectID:    defn.ProjectID,
			RecipientID:  owner,
			ScheduledFor: &scheduledFor,
		}

		if err := s.executor.Execute(ctx, &defn, payload); err != nil {
			log.WithError(err).Error("execute workflow")
		}
	}

	return nil
}

// scheduleDue reports whether the definition's schedule point for today has
// been reached within the scan window.
func (s *Scanner) scheduleDue(cfg domain.ScheduleTriggerConfig, now time.Time, loc *time.Location) (time.Time, bool) {
	if cfg.ScheduleType == domain.ScheduleWeekly && len(cfg.Weekdays) > 0 {
		today := now.In(loc).Weekday()
		match := false
		for _, wd := range cfg.Weekdays {
			if wd == today {
				match = true
				break
			}
		}
		if !match {
			return time.Time{}, false
		}
	}

	hour, minute, err := domain.ParseScheduleTime(cfg.ScheduleTime)
	if err != nil {
		return time.Time{}, false // DecodeScheduleConfig already validated
	}

	day := dayStart(now, loc)
	scheduledFor := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

	if now.Before(scheduledFor) || now.Sub(scheduledFor) > s.window {
		return time.Time{}, false
	}
	return scheduledFor, true
}

func (s *Scanner) scheduleRecipient(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return uuid.Nil, err
	}
	return project.OwnerID, nil
}

// ScanOverdue raises an unconditional system alert for every non-terminal
// task past its due date, at most once per task per calendar day. This path
// bypasses workflow definitions entirely.
func (s *Scanner) ScanOverdue(ctx context.Context) error {
	metrics.ScansTotal.WithLabelValues("overdue").Inc()

	now := s.clock.Now()
	loc := s.clock.Location()
	today := dayStart(now, loc)

	overdue, err := s.tasks.FindOverdue(ctx, today)
	if err != nil {
		metrics.ScanErrorsTotal.WithLabelValues("overdue").Inc()
		return fmt.Errorf("list overdue tasks: %w", err)
	}

	for _, task := range overdue {
		log := s.log.WithField("task_id", task.ID)

		exists, err := s.notifications.ExistsForTaskOnDate(ctx, task.ID,
			domain.NotificationTaskOverdue, dayKey(now, loc))
		if err != nil {
			log.WithError(err).Error("overdue dedup check")
			continue
		}
		if exists {
			metrics.DuplicatesSuppressedTotal.Inc()
			continue
		}

		daysOverdue := int(today.Sub(dayStart(*task.DueDate, loc)).Hours() / 24)

		metrics.TriggersMatchedTotal.WithLabelValues("overdue").Inc()

		notification := domain.NewNotification(task.Recipient(), task.ProjectID, domain.NotificationTaskOverdue)
		notification.Title = "Task overdue"
		notification.Message = fmt.Sprintf("%q is %d day(s) overdue", task.Title, daysOverdue)
		notification.Priority = domain.PriorityHigh
		notification.DedupKey = domain.TaskDayDedupKey(task.ID, domain.NotificationTaskOverdue, dayKey(now, loc))
		notification.Metadata, _ = overdueMetadata(task.ID, daysOverdue)

		created, err := s.notifications.Insert(ctx, notification)
		if err != nil {
			log.WithError(err).Error("insert overdue notification")
			continue
		}
		if !created {
			metrics.DuplicatesSuppressedTotal.Inc()
			continue
		}

		metrics.NotificationsCreatedTotal.Inc()

		if err := s.publisher.PublishNotificationCreated(ctx, domain.NotificationCreatedEvent{
			NotificationID: notification.ID,
			RecipientID:    notification.RecipientID,
			ProjectID:      notification.ProjectID,
			Type:           notification.Type,
			Title:          notification.Title,
			CreatedAt:      now,
		}); err != nil {
			log.WithError(err).Warn("publish notification event")
		}
	}

	return nil
}

func overdueMetadata(taskID uuid.UUID, daysOverdue int) (datatypes.JSON, error) {
	return json.Marshal(map[string]interface{}{
		"task_id":      taskID,
		"days_overdue": daysOverdue,
	})
}
