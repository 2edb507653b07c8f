package ipinfolib

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/9seconds/ipinfo/refdata"
)

const (
	DefaultTimeout                            = 5 * time.Second
	DefaultMaxBatchSize                       = 1000
	DefaultConcurrency                        = 1
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCircuitBreakerOpenThreshold        = 5
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
	DefaultBaseURL                            = "https://ipinfo.io"

	// MaxBatchSize is a limit of remote API for a single batch request.
	MaxBatchSize = 1000

	// MaxMapSize is a limit of remote API for the map tool.
	MaxMapSize = 500000

	Version = "1.0.0"

	workerPoolExpireTime = time.Minute
)

// ClientOpts is a set of options for NewClient. Zero values mean
// defaults.
type ClientOpts struct {
	// Token is an access token of remote API. It is required only if
	// something has to be fetched.
	Token string

	CacheCapacity int
	Timeout       time.Duration
	MaxBatchSize  int

	// Concurrency is a number of chunks fetched in parallel by all
	// lookups of the client. 1 means that chunks go sequentially.
	Concurrency int

	RateLimitInterval time.Duration
	RateLimitBurst    int

	CircuitBreakerOpenThreshold        uint32
	CircuitBreakerHalfOpenTimeout      time.Duration
	CircuitBreakerResetFailuresTimeout time.Duration

	ReferenceData refdata.Options

	BaseURL string

	// HTTPClient replaces a default one built by NewHTTPClient. In that
	// case rate limit, timeout and circuit breaker options have no
	// effect on a transport.
	HTTPClient HTTPClient
	Logger     Logger
	UserAgent  string
}

func (c ClientOpts) GetCacheCapacity() int {
	if c.CacheCapacity == 0 {
		return DefaultCacheCapacity
	}

	return c.CacheCapacity
}

func (c ClientOpts) GetTimeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}

	return c.Timeout
}

func (c ClientOpts) GetMaxBatchSize() int {
	if c.MaxBatchSize == 0 {
		return DefaultMaxBatchSize
	}

	return c.MaxBatchSize
}

func (c ClientOpts) GetConcurrency() int {
	if c.Concurrency == 0 {
		return DefaultConcurrency
	}

	return c.Concurrency
}

func (c ClientOpts) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval
}

func (c ClientOpts) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return c.RateLimitBurst
}

func (c ClientOpts) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreakerOpenThreshold == 0 {
		return DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreakerOpenThreshold
}

func (c ClientOpts) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreakerHalfOpenTimeout == 0 {
		return DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreakerHalfOpenTimeout
}

func (c ClientOpts) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreakerResetFailuresTimeout == 0 {
		return DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreakerResetFailuresTimeout
}

func (c ClientOpts) GetBaseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}

	return strings.TrimRight(c.BaseURL, "/")
}

func (c ClientOpts) GetUserAgent() string {
	if c.UserAgent == "" {
		return "IPinfoClient/Go/" + Version
	}

	return c.UserAgent
}

func (c ClientOpts) GetLogger() Logger {
	if c.Logger == nil {
		return noopLogger{}
	}

	return c.Logger
}

// Validate checks that options can be used to build a client.
func (c ClientOpts) Validate() error {
	switch {
	case c.CacheCapacity < 0:
		return &ConfigError{Option: "cache_capacity", Err: fmt.Errorf("cannot be negative: %d", c.CacheCapacity)}
	case c.Timeout < 0:
		return &ConfigError{Option: "timeout", Err: fmt.Errorf("cannot be negative: %v", c.Timeout)}
	case c.MaxBatchSize < 0:
		return &ConfigError{Option: "max_batch_size", Err: fmt.Errorf("cannot be negative: %d", c.MaxBatchSize)}
	case c.MaxBatchSize > MaxBatchSize:
		return &ConfigError{
			Option: "max_batch_size",
			Err:    fmt.Errorf("%w: cannot be more than %d", ErrTooManyAddresses, MaxBatchSize),
		}
	case c.Concurrency < 0:
		return &ConfigError{Option: "concurrency", Err: fmt.Errorf("cannot be negative: %d", c.Concurrency)}
	case c.RateLimitInterval < 0:
		return &ConfigError{Option: "rate_limit_interval", Err: fmt.Errorf("cannot be negative: %v", c.RateLimitInterval)}
	case c.RateLimitBurst < 0:
		return &ConfigError{Option: "rate_limit_burst", Err: fmt.Errorf("cannot be negative: %d", c.RateLimitBurst)}
	case c.CircuitBreakerHalfOpenTimeout < 0:
		return &ConfigError{
			Option: "circuit_breaker_half_open_timeout",
			Err:    fmt.Errorf("cannot be negative: %v", c.CircuitBreakerHalfOpenTimeout),
		}
	case c.CircuitBreakerResetFailuresTimeout < 0:
		return &ConfigError{
			Option: "circuit_breaker_reset_failures_timeout",
			Err:    fmt.Errorf("cannot be negative: %v", c.CircuitBreakerResetFailuresTimeout),
		}
	}

	parsed, err := url.Parse(c.GetBaseURL())
	if err != nil {
		return &ConfigError{Option: "base_url", Err: err}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ConfigError{Option: "base_url", Err: fmt.Errorf("unsupported scheme %q", parsed.Scheme)}
	}

	return nil
}
