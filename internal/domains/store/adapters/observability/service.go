package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	storeapp "github.com/Apurer/brew-ha-ha/internal/domains/store/application"
	storedomain "github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	storeports "github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

const tracerName = "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/observability/service"

// Service decorates the store service with tracing, logging, and metrics.
type Service struct {
	inner   storeports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core store service.
func New(inner storeports.Service, opts ...Option) storeports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input storeports.PlaceOrderInput) (*storedomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "StoreService.PlaceOrder",
		trace.WithAttributes(
			attribute.String("order.payment_method", input.PaymentMethod),
			attribute.Int("order.items.count", len(input.Items)),
			attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
		))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("order.items.count", len(input.Items)))
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		var outOfStock *storedomain.OutOfStockError
		if errors.As(err, &outOfStock) {
			s.metrics.recordOutOfStock(ctx, outOfStock.ProductID)
			s.logWarn(ctx, "order rejected", slog.Int64("product.id", outOfStock.ProductID),
				slog.Int("requested", int(outOfStock.Requested)), slog.Int("available", int(outOfStock.Available)))
			span.SetAttributes(attribute.Bool("order.out_of_stock", true))
			return nil, err
		}
		if errors.Is(err, storeapp.ErrInvalidInput) {
			s.logWarn(ctx, "order rejected", slog.String("error", err.Error()))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to place order")
	}
	span.SetAttributes(attribute.Int64("order.id", result.ID))
	s.metrics.recordPlaced(ctx, result.PaymentMethod)
	s.logInfo(ctx, "order placed", slog.Int64("order.id", result.ID), slog.String("status", result.Status))
	return result, nil
}

func (s *Service) GetOrderByID(ctx context.Context, id int64) (*storedomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "StoreService.GetOrderByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storeports.ErrNotFound) {
			span.SetAttributes(attribute.Bool("order.found", false))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	ordersPlaced metric.Int64Counter
	outOfStock   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("store.service.orders_placed", metric.WithDescription("Number of orders placed"))
	outOfStock, _ := m.Int64Counter("store.service.out_of_stock", metric.WithDescription("Number of orders rejected for insufficient stock"))
	return serviceMetrics{ordersPlaced: ordersPlaced, outOfStock: outOfStock}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, method storedomain.PaymentMethod) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("order.payment_method", string(method))))
	}
}

func (m serviceMetrics) recordOutOfStock(ctx context.Context, productID int64) {
	if m.outOfStock != nil {
		m.outOfStock.Add(ctx, 1, metric.WithAttributes(attribute.Int64("product.id", productID)))
	}
}

var _ storeports.Service = (*Service)(nil)
