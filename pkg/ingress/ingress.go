// Package ingress is the HTTP surface of the pusher: it enqueues push data
// and manages subscriptions.
package ingress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eachchat/mob-push/pkg/push"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	DefaultMaxBodySize    = 1024 * 1024
	DefaultEnqueueTimeout = time.Second
)

var (
	ErrQueueFull = errors.New("push queue is full")
	ErrClosed    = errors.New("ingress is closed")
)

type Config struct {
	// MaxBodySize bounds request bodies, in bytes.
	// Default: 1MiB
	MaxBodySize int64 `yaml:"max_body_size"`

	// EnqueueTimeout is how long a push request waits for room in the
	// pusher's income channel.
	// Default: 1s
	EnqueueTimeout time.Duration `yaml:"enqueue_timeout"`

	Content ContentConfig `yaml:"content"`
}

func (c *Config) Validate() error {
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max body size must not be negative")
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = DefaultEnqueueTimeout
	}
	return c.Content.Validate()
}

type Service struct {
	cfg    *Config
	logger log.Logger

	income   chan<- push.PushData[string]
	registry push.SubscriptionRegistry[string]

	// mu guards closed and the sends on income
	mu     sync.RWMutex
	closed bool
}

// New returns a service feeding income and managing registry. cfg must have
// been validated.
func New(cfg *Config, income chan<- push.PushData[string], registry push.SubscriptionRegistry[string], logger log.Logger) *Service {
	return &Service{
		cfg:      cfg,
		logger:   log.With(logger, "component", "ingress"),
		income:   income,
		registry: registry,
	}
}

// Enqueue hands data to the pusher, waiting at most EnqueueTimeout.
func (s *Service) Enqueue(ctx context.Context, data push.PushData[string]) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	select {
	case s.income <- data:
		return nil
	default:
	}

	timer := time.NewTimer(s.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case s.income <- data:
		return nil
	case <-timer.C:
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the income channel once every pending Enqueue has returned.
// Later pushes fail with ErrClosed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.income)
}

// Handler routes the ingress API. middlewares wrap every route.
func (s *Service) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	opts := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(level.Warn(s.logger))),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middlewares...)

	r.Method(http.MethodPost, "/push", httptransport.NewServer(
		makePushEndpoint(s), s.decodePushRequest, encodeResponse, opts...))
	r.Method(http.MethodPost, "/subscriptions", httptransport.NewServer(
		makeSubscribeEndpoint(s), s.decodeSubscriptionRequest, encodeResponse, opts...))
	r.Method(http.MethodDelete, "/subscriptions", httptransport.NewServer(
		makeUnsubscribeEndpoint(s), s.decodeSubscriptionRequest, encodeResponse, opts...))
	r.Method(http.MethodGet, "/subscriptions", httptransport.NewServer(
		makeCheckEndpoint(s), decodeSubscriptionQuery, encodeResponse, opts...))

	return r
}
