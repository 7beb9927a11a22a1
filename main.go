package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pkgconfig "github.com/eachchat/mob-push/pkg/config"
	"github.com/eachchat/mob-push/pkg/ingress"
	"github.com/eachchat/mob-push/pkg/log"
	"github.com/eachchat/mob-push/pkg/metrics"
	"github.com/eachchat/mob-push/pkg/push"
	"github.com/eachchat/mob-push/pkg/push/mobpush"
	"github.com/eachchat/mob-push/pkg/subscribe/bolt"
	"github.com/eachchat/mob-push/pkg/subscribe/memory"
	"github.com/eachchat/mob-push/pkg/subscribe/redis"
	"github.com/go-chi/chi/v5"
	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

const shutdownTimeout = 10 * time.Second

// config is the configuration of the server.
type config struct {
	// Addr is the address to listen on.
	// Default: :80
	Addr string `yaml:"addr"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// QueueSize is the buffer of the pusher's income channel.
	// Default: 64
	QueueSize int `yaml:"queue_size"`

	MobPush mobpush.Config `yaml:"mobpush"`
	Ingress ingress.Config `yaml:"ingress"`
	Store   storeConfig    `yaml:"store"`
}

func (c *config) Validate() error {
	if c.Addr == "" {
		c.Addr = ":80"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if !log.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue size must not be negative")
	}
	if c.QueueSize == 0 {
		c.QueueSize = 64
	}
	return pkgconfig.ValidateConfig(c)
}

const (
	storeMemory = "memory"
	storeBolt   = "bolt"
	storeRedis  = "redis"
)

type storeConfig struct {
	// Type is one of memory, bolt, redis.
	// Default: memory
	Type string `yaml:"type"`

	// Path is the database file of the bolt store.
	// Default: ./subscriptions.db
	Path string `yaml:"path"`

	Redis *redis.Config `yaml:"redis"`
}

func (c *storeConfig) Validate() error {
	switch c.Type {
	case "":
		c.Type = storeMemory
	case storeMemory:
	case storeBolt:
		if c.Path == "" {
			c.Path = "./subscriptions.db"
		}
	case storeRedis:
		if c.Redis == nil {
			return fmt.Errorf("redis store needs a redis section")
		}
		return c.Redis.Validate()
	default:
		return fmt.Errorf("unknown store type %q", c.Type)
	}
	return nil
}

// getConfig reads the configuration from the given file.
func getConfig(path string) (*config, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fail open config file: %v", err)
	}
	defer fd.Close()

	conf := new(config)
	err = yaml.NewDecoder(fd).Decode(conf)
	if err != nil {
		return nil, fmt.Errorf("fail decode config file: %v", err)
	}
	return conf, nil
}

// parseFlags reads flags, falling back to MOBPUSH_ environment variables, and
// applies them over the config file.
func parseFlags(args []string) (*config, error) {
	fs := flag.NewFlagSet("mob-push", flag.ContinueOnError)
	var (
		flConfig    = fs.String("c", "./config.yaml", "config path")
		flAddr      = fs.String("addr", "", "address to listen on, overrides the config file")
		flLogLevel  = fs.String("log-level", "", "log level, overrides the config file")
		flAppKey    = fs.String("app-key", "", "gateway app key, overrides the config file")
		flAppSecret = fs.String("app-secret", "", "gateway app secret, overrides the config file")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("MOBPUSH")); err != nil {
		return nil, fmt.Errorf("fail parse flags: %v", err)
	}

	cfg, err := getConfig(*flConfig)
	if err != nil {
		return nil, err
	}

	if *flAddr != "" {
		cfg.Addr = *flAddr
	}
	if *flLogLevel != "" {
		cfg.LogLevel = *flLogLevel
	}
	if *flAppKey != "" {
		cfg.MobPush.AppKey = *flAppKey
	}
	if *flAppSecret != "" {
		cfg.MobPush.AppSecret = *flAppSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	return cfg, nil
}

// openStore returns the configured subscription store and a closer releasing
// it.
func openStore(ctx context.Context, cfg *storeConfig, logger kitlog.Logger) (push.SubscriptionRegistry[string], io.Closer, error) {
	switch cfg.Type {
	case storeBolt:
		store, err := bolt.Open(logger, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case storeRedis:
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redis.New(client, cfg.Redis.KeyPrefix), client, nil
	default:
		return memory.New[string](), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Main starts the server and returns a function to stop it.
func Main(ctx context.Context) func() {
	_ = godotenv.Load()

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		stdlog.Fatalf("fail get config: %v", err)
	}

	logger := log.NewLogger(cfg.LogLevel)

	store, closer, err := openStore(ctx, &cfg.Store, logger)
	if err != nil {
		level.Error(logger).Log("msg", "fail open subscription store", "type", cfg.Store.Type, "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pusher, income, errs := mobpush.New[string](
		&cfg.MobPush,
		store,
		mobpush.NewHTTPTransport(nil, cfg.MobPush.RequestTimeout),
		cfg.QueueSize,
		mobpush.WithLogger(logger),
		mobpush.WithMetrics(metrics.New(reg)),
	)

	go func() {
		for perr := range errs {
			level.Error(logger).Log("msg", "push failed", "pushID", perr.PushID, "resource", perr.Resource, "kind", perr.Kind, "err", perr)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// the pusher drains its income channel on shutdown, it does not watch ctx
		if err := pusher.Run(context.Background()); err != nil {
			level.Error(logger).Log("msg", "pusher stopped", "err", err)
			os.Exit(1)
		}
	}()

	svc := ingress.New(&cfg.Ingress, income, store, logger)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Mount("/", svc.Handler(metrics.HTTPMiddleware(reg)))

	s := http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	level.Info(logger).Log("msg", "start server", "addr", cfg.Addr, "store", cfg.Store.Type)
	go func() {
		err := s.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			level.Error(logger).Log("msg", "fail listen and serve", "err", err)
			os.Exit(1)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			level.Error(logger).Log("msg", "fail shutdown server", "err", err)
		}

		// handlers still running after a failed shutdown see ErrClosed
		svc.Close()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			// the pusher may still read the store
			level.Warn(logger).Log("msg", "pusher did not drain in time, leave store open", "err", shutdownCtx.Err())
			return
		}

		if err := closer.Close(); err != nil {
			level.Error(logger).Log("msg", "fail close subscription store", "err", err)
		}
	}
}

func main() {
	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	stop := Main(ctx)

	<-ctx.Done()
	cancel()
	stop()

	fmt.Println("shutdown gracefully")
}
