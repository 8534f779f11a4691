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

	catalogdomain "github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
)

const tracerName = "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/observability/service"

// Service decorates the catalog service with tracing, logging, and metrics.
type Service struct {
	inner   catalogports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core catalog service.
func New(inner catalogports.Service, opts ...Option) catalogports.Service {
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

func (s *Service) ListProducts(ctx context.Context) ([]*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	result, err := s.inner.ListProducts(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list products")
	}
	span.SetAttributes(attribute.Int("catalog.products.count", len(result)))
	s.metrics.recordLookup(ctx, "list")
	return result, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalogdomain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	result, err := s.inner.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			span.SetAttributes(attribute.Bool("product.found", false))
			return nil, err
		}
		return nil, s.handleError(ctx, span, err, "failed to load product", slog.Int64("product.id", id))
	}
	s.metrics.recordLookup(ctx, "get")
	return result, nil
}

func (s *Service) AddProduct(ctx context.Context, product *catalogdomain.Product) (*catalogdomain.Product, error) {
	name := ""
	if product != nil {
		name = product.Name
	}
	ctx, span := s.tracer.Start(ctx, "CatalogService.AddProduct", trace.WithAttributes(attribute.String("product.name", name)))
	defer span.End()

	result, err := s.inner.AddProduct(ctx, product)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add product", slog.String("product.name", name))
	}
	s.logInfo(ctx, "product added", slog.Int64("product.id", result.ID), slog.String("product.name", result.Name))
	return result, nil
}

func (s *Service) RemoveProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "CatalogService.RemoveProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := s.inner.RemoveProduct(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to remove product", slog.Int64("product.id", id))
	}
	s.logInfo(ctx, "product removed", slog.Int64("product.id", id))
	return nil
}

func (s *Service) SeedIfEmpty(ctx context.Context, products []*catalogdomain.Product) (int, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SeedIfEmpty", trace.WithAttributes(attribute.Int("catalog.seed.count", len(products))))
	defer span.End()

	added, err := s.inner.SeedIfEmpty(ctx, products)
	if err != nil {
		return added, s.handleError(ctx, span, err, "failed to seed catalog", slog.Int("added", added))
	}
	if added > 0 {
		s.logInfo(ctx, "catalog seeded", slog.Int("added", added))
	}
	return added, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	lookups metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	lookups, _ := m.Int64Counter("catalog.service.lookups", metric.WithDescription("Number of successful catalog reads"))
	return serviceMetrics{lookups: lookups}
}

func (m serviceMetrics) recordLookup(ctx context.Context, kind string) {
	if m.lookups != nil {
		m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("lookup.kind", kind)))
	}
}

var _ catalogports.Service = (*Service)(nil)
