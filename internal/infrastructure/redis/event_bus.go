package redis

import (
	"context"
	"encoding/json"

	"renotimeline/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisEventBus struct {
	client              *redis.Client
	notificationChannel string
	taskEventChannel    string
}

func NewRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{
		client:              client,
		notificationChannel: "renotimeline:notifications:created",
		taskEventChannel:    "renotimeline:tasks:status-changed",
	}
}

// PublishNotificationCreated broadcasts the event so connected UI clients
// pick up new notifications without polling.
func (b *RedisEventBus) PublishNotificationCreated(ctx context.Context, event domain.NotificationCreatedEvent) error {
	// Serialize the struct to JSON
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, b.notificationChannel, payload).Err()
}

// SubscribeToTaskEvents opens a continuous stream of task status
// transitions for the listener.
func (b *RedisEventBus) SubscribeToTaskEvents(ctx context.Context) (<-chan domain.TaskStatusChangedEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.taskEventChannel)

	// Create a Go channel to send messages to the listener
	msgChan := make(chan domain.TaskStatusChangedEvent)

	// Start a background goroutine to listen to Redis and forward to our Go channel
	go func() {
		defer close(msgChan)
		for {
			select {
			case <-ctx.Done(): // Handle shutdown gracefully
				pubsub.Close()
				return
			default:
				msg, err := pubsub.ReceiveMessage(ctx)
				if err == nil {
					var event domain.TaskStatusChangedEvent
					if err := json.Unmarshal([]byte(msg.Payload), &event); err == nil {
						msgChan <- event
					}
				}
			}
		}
	}()

	return msgChan, nil
}
