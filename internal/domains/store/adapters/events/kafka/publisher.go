// Package kafka publishes order lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

// EventTypeOrderPlaced is carried in the envelope and the event-type header.
const EventTypeOrderPlaced = "order.placed"

var _ ports.EventPublisher = (*Publisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes one message per placed order, keyed by order id so every
// event for an order lands on the same partition.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	})
}

func newPublisher(w messageWriter) *Publisher {
	return &Publisher{writer: w, now: time.Now}
}

type envelope struct {
	EventID    string       `json:"event_id"`
	EventType  string       `json:"event_type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    orderPayload `json:"payload"`
}

type orderPayload struct {
	OrderID       int64         `json:"order_id"`
	PaymentMethod string        `json:"payment_method"`
	OrderDate     time.Time     `json:"order_date"`
	Status        string        `json:"status"`
	Items         []itemPayload `json:"order_items"`
}

type itemPayload struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return nil
	}
	event := envelope{
		EventID:    uuid.NewString(),
		EventType:  EventTypeOrderPlaced,
		OccurredAt: p.now().UTC(),
		Payload: orderPayload{
			OrderID:       order.ID,
			PaymentMethod: string(order.PaymentMethod),
			OrderDate:     order.OrderDate,
			Status:        order.Status,
			Items:         make([]itemPayload, 0, len(order.Items)),
		},
	}
	for _, item := range order.Items {
		event.Payload.Items = append(event.Payload.Items, itemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		})
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(EventTypeOrderPlaced)},
		},
	})
}

// Close flushes pending writes.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
