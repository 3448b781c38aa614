// service содержит бизнес-логику threads-сервиса.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/threads-service/internal/config"
	"github.com/pribylovaa/threads-service/internal/metrics"
	"github.com/pribylovaa/threads-service/internal/storage"
)

var (
	// ErrNotFound: цель не найдена (только в строгом режиме).
	ErrNotFound = errors.New("not found")
	// ErrConflict: конфликт идентификаторов при засеве.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument: неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInternal: внутренняя ошибка стораджа.
	ErrInternal = errors.New("internal")
)

// Service: описывает бизнес-логику threads-service.
type Service struct {
	storage storage.Storage
	cfg     config.Config
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithMetrics подключает prometheus-счётчики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock подменяет источник текущего времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, cfg config.Config, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		cfg:     cfg,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// storageError маппит ошибку стораджа в ошибку сервиса.
// Отмена и дедлайн контекста пробрасываются как есть (транспорт отдаёт 499/504),
// остальное: ErrInternal.
func storageError(lg *slog.Logger, op, call string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		lg.Warn("request context done on "+call, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Error("storage error on "+call, "err", err)
	return fmt.Errorf("%s: %w", op, ErrInternal)
}
