package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

// Service orchestrates order placement and retrieval.
type Service struct {
	repo        ports.Repository
	idempotency ports.IdempotencyStore
	events      ports.EventPublisher
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithClock overrides the time source used for order_date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIdempotencyStore enables Idempotency-Key replay protection.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithEventPublisher publishes order.placed after each commit.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

// WithLogger sets the logger used for post-commit side effects.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		events: ports.NoopEventPublisher,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder validates the request and, in one transaction, creates the order,
// its items and decrements stock. Any failure leaves the store unchanged.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := domain.NewOrder(domain.PaymentMethod(input.PaymentMethod), items, s.now())
	if err != nil {
		return nil, mapError(err)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var requestHash string
	if key != "" && s.idempotency != nil {
		requestHash, err = FingerprintPlaceOrder(input)
		if err != nil {
			return nil, err
		}
		replayed, err := s.claim(ctx, key, requestHash)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	err = s.repo.InTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		for _, item := range order.Items {
			stock, err := tx.ProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := stock.Reserve(item.Quantity); err != nil {
				return err
			}
			if err := tx.AddItem(ctx, order.ID, item); err != nil {
				return err
			}
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if requestHash != "" {
			s.release(ctx, key, requestHash)
		}
		return nil, mapError(err)
	}

	if requestHash != "" {
		s.remember(ctx, key, requestHash, order.ID)
	}
	placed, err := s.repo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if err := s.events.PublishOrderPlaced(ctx, placed); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order placed event not published",
			slog.Int64("order.id", placed.ID), slog.String("error", err.Error()))
	}
	return placed, nil
}

func (s *Service) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ports.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// claim reserves the key for this placement. A key already finished with the
// same payload replays its order; a pending one belongs to a concurrent retry.
func (s *Service) claim(ctx context.Context, key, requestHash string) (*domain.Order, error) {
	held, err := s.idempotency.Claim(ctx, key, requestHash)
	if err != nil || held == nil {
		return nil, err
	}
	if held.RequestHash != requestHash {
		return nil, ports.ErrIdempotencyConflict
	}
	if held.Pending() {
		return nil, ports.ErrIdempotencyInProgress
	}
	return s.repo.GetByID(ctx, held.OrderID)
}

// release frees the claim of a placement that did not commit.
func (s *Service) release(ctx context.Context, key, requestHash string) {
	if err := s.idempotency.Release(ctx, key, requestHash); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "idempotency claim not released",
			slog.String("error", err.Error()))
	}
}

// remember finishes the claim once the order is committed. The order stands
// either way, so a store failure is only logged.
func (s *Service) remember(ctx context.Context, key, requestHash string, orderID int64) {
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		OrderID:     orderID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "idempotency key not stored",
			slog.Int64("order.id", orderID), slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
