package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/ameedanxari/menumaker-sub006/internal/events"
)

// TaskOrderConfirmation is the asynq task type for order confirmation pushes.
const TaskOrderConfirmation = "notify:order_confirmation"

// Enqueuer forwards order events to the background worker via asynq.
// It implements events.Notifier.
type Enqueuer struct {
	Client   *asynq.Client
	Queue    string
	MaxRetry int
}

// Notify implements events.Notifier. Only order.created events produce a
// task; other topics are ignored.
func (e Enqueuer) Notify(ctx context.Context, event events.DomainEvent) error {
	if e.Client == nil || event.Topic != events.TopicOrderCreated {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: marshal event: %w", err)
	}
	queue := e.Queue
	if queue == "" {
		queue = "notifications"
	}
	maxRetry := e.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 5
	}
	task := asynq.NewTask(TaskOrderConfirmation, payload)
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.Queue(queue),
		asynq.MaxRetry(maxRetry),
		asynq.TaskID(event.ID),
	)
	if err != nil {
		return fmt.Errorf("notify: enqueue confirmation: %w", err)
	}
	return nil
}
