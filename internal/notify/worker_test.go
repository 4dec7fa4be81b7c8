package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ameedanxari/menumaker-sub006/internal/events"
)

type captureSender struct {
	sent []OrderConfirmation
	err  error
}

func (c *captureSender) Send(_ context.Context, confirmation OrderConfirmation) error {
	c.sent = append(c.sent, confirmation)
	return c.err
}

func confirmationTask(t *testing.T, event events.DomainEvent) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return asynq.NewTask(TaskOrderConfirmation, payload)
}

func TestHandleOrderConfirmation(t *testing.T) {
	body, err := json.Marshal(OrderConfirmation{
		BusinessID: "b1",
		TotalCents: 1800,
		CouponCode: "SAVE15",
		ItemCount:  2,
	})
	require.NoError(t, err)

	event := events.DomainEvent{
		ID:          "ev-1",
		Topic:       events.TopicOrderCreated,
		AggregateID: "order-42",
		Payload:     body,
		OccurredAt:  time.Now(),
	}

	sender := &captureSender{}
	w := Worker{Logger: zerolog.Nop(), Senders: []Sender{sender}}
	require.NoError(t, w.HandleOrderConfirmation(context.Background(), confirmationTask(t, event)))
	require.Len(t, sender.sent, 1)
	require.Equal(t, "order-42", sender.sent[0].OrderID)
	require.Equal(t, int64(1800), sender.sent[0].TotalCents)
	require.Equal(t, "SAVE15", sender.sent[0].CouponCode)
}

func TestHandleOrderConfirmationBadPayloadSkipsRetry(t *testing.T) {
	w := Worker{Logger: zerolog.Nop()}
	task := asynq.NewTask(TaskOrderConfirmation, []byte("not json"))
	err := w.HandleOrderConfirmation(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRetryDelayGrowsWithAttempts(t *testing.T) {
	task := asynq.NewTask(TaskOrderConfirmation, nil)
	first := RetryDelay(1, nil, task)
	fifth := RetryDelay(5, nil, task)

	// jitter is +/-20% around the exponential base
	require.InDelta(t, float64(5*time.Second), float64(first), float64(time.Second))
	require.InDelta(t, float64(80*time.Second), float64(fifth), float64(16*time.Second))
	require.Greater(t, fifth, first)
}
