package mobpush

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/eachchat/mob-push/pkg/metrics"
	"github.com/eachchat/mob-push/pkg/push"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/time/rate"
)

// ErrorChannelSize is the capacity of the error channel returned by New.
const ErrorChannelSize = 16

var (
	ErrAlreadyRunning = errors.New("pusher already running")
	ErrReportBlocked  = errors.New("error channel stayed full, nobody is reading errors")
)

// Limiter paces the requests sent to the gateway. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

type options struct {
	logger  log.Logger
	limiter Limiter
	metrics *metrics.Metrics
}

type Option func(*options)

func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLimiter replaces the default limiter of one request per BatchInterval.
func WithLimiter(limiter Limiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Pusher delivers push data received on its income channel to the gateway,
// one item at a time, in arrival order.
type Pusher[K comparable] struct {
	cfg       *Config
	store     push.SubscriptionStore[K]
	transport push.Transport

	logger  log.Logger
	limiter Limiter
	metrics *metrics.Metrics

	income <-chan push.PushData[K]
	errs   chan *push.PushError

	running   atomic.Bool
	closeErrs sync.Once
}

// New returns a pusher, the send end of its income channel, buffered with
// buffSize, and the receive end of its error channel. Closing the income
// channel stops the pusher once every item sent before was processed.
// cfg must have been validated.
func New[K comparable](
	cfg *Config,
	store push.SubscriptionStore[K],
	transport push.Transport,
	buffSize int,
	opts ...Option,
) (*Pusher[K], chan<- push.PushData[K], <-chan *push.PushError) {
	o := &options{
		logger:  log.NewNopLogger(),
		limiter: rate.NewLimiter(rate.Every(cfg.BatchInterval), 1),
	}
	for _, opt := range opts {
		opt(o)
	}

	income := make(chan push.PushData[K], buffSize)
	errs := make(chan *push.PushError, ErrorChannelSize)

	p := &Pusher[K]{
		cfg:       cfg,
		store:     store,
		transport: transport,
		logger:    log.With(o.logger, "component", "pusher"),
		limiter:   o.limiter,
		metrics:   o.metrics,
		income:    income,
		errs:      errs,
	}
	return p, income, errs
}

// Run processes the income channel until it is closed and drained, or ctx is
// done. Failures of single items go to the error channel and do not stop Run.
// Run returns ErrReportBlocked if the error channel stays full for longer
// than the configured ReportTimeout. The error channel is closed when Run
// returns.
func (p *Pusher[K]) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer p.closeErrs.Do(func() { close(p.errs) })

	level.Info(p.logger).Log("msg", "start pusher", "endpoint", p.cfg.Endpoint, "batchSize", p.cfg.BatchSize)
	for {
		select {
		case <-ctx.Done():
			level.Info(p.logger).Log("msg", "stop pusher", "err", ctx.Err())
			return ctx.Err()
		case data, ok := <-p.income:
			if !ok {
				level.Info(p.logger).Log("msg", "income channel closed, stop pusher")
				return nil
			}

			if perr := p.deliver(ctx, data); perr != nil {
				if err := p.report(ctx, perr); err != nil {
					return err
				}
			}
		}
	}
}
