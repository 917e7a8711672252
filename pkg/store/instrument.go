package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"wiki-api/pkg/metrics"
	"wiki-api/pkg/models"
)

// Instrumented wraps a Store with debug logging and Prometheus metrics.
// It logs every call, failures included, at debug level only.
type Instrumented struct {
	inner   Store
	backend string
	logger  *zap.Logger
}

func Instrument(inner Store, backend string, logger *zap.Logger) *Instrumented {
	return &Instrumented{
		inner:   inner,
		backend: backend,
		logger:  logger.Named("store").With(zap.String("backend", backend)),
	}
}

func (s *Instrumented) observe(op string, start time.Time, err error, fields ...zap.Field) {
	elapsed := time.Since(start)
	status := metrics.Status(err)
	if errors.Is(err, ErrNotFound) {
		status = "not_found"
	}
	metrics.StoreOperationsTotal.WithLabelValues(s.backend, op, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(s.backend, op).Observe(elapsed.Seconds())

	// Failures are reported by the caller, which knows the request.
	fields = append(fields, zap.String("operation", op), zap.Duration("duration", elapsed))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Debug("Store operation", fields...)
}

func (s *Instrumented) Find(ctx context.Context) ([]models.Article, error) {
	start := time.Now()
	articles, err := s.inner.Find(ctx)
	s.observe("find", start, err, zap.Int("count", len(articles)))
	return articles, err
}

func (s *Instrumented) FindOne(ctx context.Context, title string) (*models.Article, error) {
	start := time.Now()
	article, err := s.inner.FindOne(ctx, title)
	s.observe("find_one", start, err, zap.String("title", title))
	return article, err
}

func (s *Instrumented) Insert(ctx context.Context, article models.Article) error {
	start := time.Now()
	err := s.inner.Insert(ctx, article)
	s.observe("insert", start, err, zap.String("title", article.Title))
	return err
}

func (s *Instrumented) Replace(ctx context.Context, title string, article models.Article) error {
	start := time.Now()
	err := s.inner.Replace(ctx, title, article)
	s.observe("replace", start, err, zap.String("title", title))
	return err
}

func (s *Instrumented) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	start := time.Now()
	err := s.inner.Update(ctx, title, patch)
	s.observe("update", start, err, zap.String("title", title))
	return err
}

func (s *Instrumented) DeleteOne(ctx context.Context, title string) error {
	start := time.Now()
	err := s.inner.DeleteOne(ctx, title)
	s.observe("delete_one", start, err, zap.String("title", title))
	return err
}

func (s *Instrumented) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := s.inner.DeleteAll(ctx)
	s.observe("delete_all", start, err)
	return err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *Instrumented) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
