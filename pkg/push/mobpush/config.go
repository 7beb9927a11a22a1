package mobpush

import (
	"fmt"
	"time"
)

const (
	// DefaultEndpoint is the gateway's create-push endpoint.
	DefaultEndpoint = "http://api.push.mob.com/v3/push/createPush"

	// MaxBatchSize is the largest audience the gateway accepts in one request.
	MaxBatchSize = 1000

	DefaultTitle          = "Notification"
	DefaultBatchInterval  = 500 * time.Millisecond
	DefaultReportTimeout  = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Config holds the gateway credentials and the pacing of a pusher.
type Config struct {
	AppKey    string `yaml:"app_key"`
	AppSecret string `yaml:"app_secret"`

	// Endpoint is the create-push url.
	// Default: DefaultEndpoint
	Endpoint string `yaml:"endpoint"`

	// DefaultTitle is used for push data without a title.
	// Default: DefaultTitle
	DefaultTitle string `yaml:"default_title"`

	// BatchSize is the number of devices per request, at most MaxBatchSize.
	// Default: MaxBatchSize
	BatchSize int `yaml:"batch_size"`

	// BatchInterval is the minimum delay between two requests.
	// Default: 500ms
	BatchInterval time.Duration `yaml:"batch_interval"`

	// ReportTimeout is how long the pusher waits on a full error channel
	// before giving up.
	// Default: 5s
	ReportTimeout time.Duration `yaml:"report_timeout"`

	// RequestTimeout bounds one HTTP exchange with the gateway.
	// Default: 10s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// IosSandbox delivers iOS notifications through the APNs sandbox.
	IosSandbox bool `yaml:"ios_sandbox"`
}

func (c *Config) Validate() error {
	if c.AppKey == "" {
		return fmt.Errorf("app key is required")
	}
	if c.AppSecret == "" {
		return fmt.Errorf("app secret is required")
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = DefaultTitle
	}
	if c.BatchSize == 0 {
		c.BatchSize = MaxBatchSize
	}
	if c.BatchSize < 0 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch size must be in [1, %d], got %d", MaxBatchSize, c.BatchSize)
	}
	if c.BatchInterval < 0 {
		return fmt.Errorf("batch interval must not be negative")
	}
	if c.BatchInterval == 0 {
		c.BatchInterval = DefaultBatchInterval
	}
	if c.ReportTimeout <= 0 {
		c.ReportTimeout = DefaultReportTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return nil
}
