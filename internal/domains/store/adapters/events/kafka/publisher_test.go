package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_WritesKeyedEnvelope(t *testing.T) {
	writer := &fakeWriter{}
	publisher := newPublisher(writer)
	occurred := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return occurred }

	err := publisher.PublishOrderPlaced(context.Background(), &domain.Order{
		ID:            42,
		PaymentMethod: domain.PaymentCredit,
		OrderDate:     occurred,
		Status:        domain.StatusInProgress,
		Items:         []domain.OrderItem{{ProductID: 2, ProductName: "muffin", Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)

	var event envelope
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventTypeOrderPlaced, event.EventType)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, occurred, event.OccurredAt)
	assert.Equal(t, int64(42), event.Payload.OrderID)
	require.Len(t, event.Payload.Items, 1)
	assert.Equal(t, "muffin", event.Payload.Items[0].ProductName)
}

func TestPublisher_PropagatesWriteErrors(t *testing.T) {
	publisher := newPublisher(&fakeWriter{err: errors.New("leader not available")})

	err := publisher.PublishOrderPlaced(context.Background(), &domain.Order{ID: 1})
	assert.Error(t, err)
}

func TestPublisher_Close(t *testing.T) {
	writer := &fakeWriter{}
	require.NoError(t, newPublisher(writer).Close())
	assert.True(t, writer.closed)
}
