package ports

import (
	"context"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
)

// EventPublisher announces committed orders to downstream consumers.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

// NoopEventPublisher drops every event.
var NoopEventPublisher EventPublisher = noopEventPublisher{}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishOrderPlaced(context.Context, *domain.Order) error { return nil }
