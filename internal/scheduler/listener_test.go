package scheduler

import (
	"context"
	"testing"
	"time"

	"renotimeline/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeEventSource struct {
	ch chan domain.TaskStatusChangedEvent
}

func (s *fakeEventSource) SubscribeToTaskEvents(_ context.Context) (<-chan domain.TaskStatusChangedEvent, error) {
	return s.ch, nil
}

type listenerEnv struct {
	source     *fakeEventSource
	workflows  *fakeWorkflowRepo
	tasks      *fakeTaskRepo
	executions *fakeExecutionRepo
	store      *fakeNotificationStore
	listener   *Listener
}

func newListenerEnv(now time.Time) *listenerEnv {
	env := &listenerEnv{
		source:     &fakeEventSource{ch: make(chan domain.TaskStatusChangedEvent)},
		workflows:  &fakeWorkflowRepo{},
		tasks:      &fakeTaskRepo{},
		executions: &fakeExecutionRepo{},
		store:      &fakeNotificationStore{},
	}
	clock := &fixedClock{now: now, loc: time.UTC}
	executor := NewExecutor(env.executions, env.workflows, env.store, &fakePublisher{}, clock)
	env.listener = NewListener(env.source, env.workflows, env.tasks, executor)
	return env
}

func statusDefinitionWithConfig(projectID uuid.UUID, cfg string) *domain.WorkflowDefinition {
	defn := statusChangedDefinition(projectID, `[{"type": "send_notification"}]`)
	defn.TriggerConfig = datatypes.JSON(cfg)
	return defn
}

func TestHandleStatusChanged(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	projectID := uuid.New()
	actor := uuid.New()

	event := domain.TaskStatusChangedEvent{
		ProjectID:  projectID,
		TaskID:     uuid.New(),
		TaskTitle:  "paint walls",
		FromStatus: domain.TaskInProgress,
		ToStatus:   domain.TaskReview,
		ActorID:    &actor,
	}

	t.Run("MatchesTransitionFilters", func(t *testing.T) {
		env := newListenerEnv(now)
		env.workflows.definitions = []*domain.WorkflowDefinition{
			statusDefinitionWithConfig(projectID, `{"to_status": "review"}`),
		}

		env.listener.handleStatusChanged(context.Background(), event)

		require.Len(t, env.executions.executions, 1)
		require.Len(t, env.store.notifications, 1)
		assert.Equal(t, actor, env.store.notifications[0].RecipientID)
		assert.Contains(t, env.store.notifications[0].Message, "moved from in_progress to review")
	})

	t.Run("FilterMismatchDoesNotFire", func(t *testing.T) {
		env := newListenerEnv(now)
		env.workflows.definitions = []*domain.WorkflowDefinition{
			statusDefinitionWithConfig(projectID, `{"to_status": "done"}`),
			statusDefinitionWithConfig(projectID, `{"from_status": "todo"}`),
		}

		env.listener.handleStatusChanged(context.Background(), event)
		assert.Empty(t, env.executions.executions)
	})

	t.Run("OtherProjectDefinitionsIgnored", func(t *testing.T) {
		env := newListenerEnv(now)
		env.workflows.definitions = []*domain.WorkflowDefinition{
			statusDefinitionWithConfig(uuid.New(), `{}`),
		}

		env.listener.handleStatusChanged(context.Background(), event)
		assert.Empty(t, env.executions.executions)
	})

	t.Run("FallsBackToTaskRecipientWithoutActor", func(t *testing.T) {
		env := newListenerEnv(now)
		env.workflows.definitions = []*domain.WorkflowDefinition{
			statusDefinitionWithConfig(projectID, `{}`),
		}

		assignee := uuid.New()
		anonymous := event
		anonymous.ActorID = nil
		env.tasks.tasks = []domain.Task{{
			ID:         event.TaskID,
			ProjectID:  projectID,
			Title:      event.TaskTitle,
			Status:     domain.TaskReview,
			AssigneeID: &assignee,
			CreatorID:  uuid.New(),
		}}

		env.listener.handleStatusChanged(context.Background(), anonymous)

		require.Len(t, env.store.notifications, 1)
		assert.Equal(t, assignee, env.store.notifications[0].RecipientID)
	})
}

func TestListenerStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	projectID := uuid.New()

	env := newListenerEnv(now)
	env.workflows.definitions = []*domain.WorkflowDefinition{
		statusDefinitionWithConfig(projectID, `{}`),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.listener.Start(ctx) }()

	actor := uuid.New()
	env.source.ch <- domain.TaskStatusChangedEvent{
		ProjectID:  projectID,
		TaskID:     uuid.New(),
		TaskTitle:  "demo day",
		FromStatus: domain.TaskTodo,
		ToStatus:   domain.TaskInProgress,
		ActorID:    &actor,
	}

	cancel()
	require.NoError(t, <-done)
	assert.Len(t, env.executions.executions, 1)
}
