package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ameedanxari/menumaker-sub006/internal/events"
	"github.com/ameedanxari/menumaker-sub006/internal/resilience"
)

// OrderConfirmation is the payload handed to downstream delivery channels.
type OrderConfirmation struct {
	OrderID        string `json:"orderId"`
	BusinessID     string `json:"businessId"`
	TotalCents     int64  `json:"totalCents"`
	CouponCode     string `json:"couponCode,omitempty"`
	CurrencyCode   string `json:"currencyCode,omitempty"`
	ItemCount      int    `json:"itemCount"`
	OccurredAtUnix int64  `json:"occurredAt"`
}

// Sender delivers a confirmation over some channel (push, email, sms).
type Sender interface {
	Send(ctx context.Context, confirmation OrderConfirmation) error
}

// Worker consumes notification tasks off the queue.
type Worker struct {
	Logger  zerolog.Logger
	Senders []Sender
}

// Register attaches the worker's handlers to an asynq mux.
func (w Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskOrderConfirmation, w.HandleOrderConfirmation)
}

// RetryDelay spaces out redeliveries with jittered exponential backoff so a
// flapping delivery channel is not hammered on a fixed cadence.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return resilience.Backoff(5*time.Second, n, 0.2)
}

// HandleOrderConfirmation processes a single order confirmation task.
func (w Worker) HandleOrderConfirmation(ctx context.Context, task *asynq.Task) error {
	var event events.DomainEvent
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return fmt.Errorf("notify: decode event: %w", asynq.SkipRetry)
	}
	var confirmation OrderConfirmation
	if err := json.Unmarshal(event.Payload, &confirmation); err != nil {
		return fmt.Errorf("notify: decode confirmation: %w", asynq.SkipRetry)
	}
	confirmation.OrderID = event.AggregateID
	confirmation.OccurredAtUnix = event.OccurredAt.Unix()

	for _, sender := range w.Senders {
		if sender == nil {
			continue
		}
		if err := sender.Send(ctx, confirmation); err != nil {
			return fmt.Errorf("notify: send confirmation: %w", err)
		}
	}
	w.Logger.Info().
		Str("order_id", confirmation.OrderID).
		Str("business_id", confirmation.BusinessID).
		Int64("total_cents", confirmation.TotalCents).
		Msg("order confirmation dispatched")
	return nil
}

// LogSender writes confirmations to the log. It stands in for real
// delivery channels in development environments.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, confirmation OrderConfirmation) error {
	s.Logger.Info().
		Str("order_id", confirmation.OrderID).
		Str("coupon_code", confirmation.CouponCode).
		Msg("order confirmation")
	return nil
}
