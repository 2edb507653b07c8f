package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hjson/hjson-go"
	"github.com/spf13/afero"

	"github.com/9seconds/ipinfo/ipinfolib"
	"github.com/9seconds/ipinfo/refdata"
)

const DefaultListen = "127.0.0.1:8000"

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	if dur < 0 {
		return fmt.Errorf("duration has to be positive: %s", vv)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen            string               `json:"listen"`
	Token             string               `json:"token"`
	CacheCapacity     int                  `json:"cache_capacity"`
	Timeout           duration             `json:"timeout"`
	MaxBatchSize      int                  `json:"max_batch_size"`
	Concurrency       int                  `json:"concurrency"`
	RateLimitInterval duration             `json:"rate_limit_interval"`
	RateLimitBurst    int                  `json:"rate_limit_burst"`
	BaseURL           string               `json:"base_url"`
	CircuitBreaker    configCircuitBreaker `json:"circuit_breaker"`
	ReferenceData     configReferenceData  `json:"reference_data"`
	BasicAuth         configBasicAuth      `json:"basic_auth"`
}

func (c config) GetListen() string {
	if c.Listen == "" {
		return DefaultListen
	}

	return c.Listen
}

// ClientOpts converts the config into options of the client. Zero
// values stay zero so the client applies its own defaults.
func (c config) ClientOpts() ipinfolib.ClientOpts {
	return ipinfolib.ClientOpts{
		Token:                              c.Token,
		CacheCapacity:                      c.CacheCapacity,
		Timeout:                            c.Timeout.Duration,
		MaxBatchSize:                       c.MaxBatchSize,
		Concurrency:                        c.Concurrency,
		RateLimitInterval:                  c.RateLimitInterval.Duration,
		RateLimitBurst:                     c.RateLimitBurst,
		CircuitBreakerOpenThreshold:        c.CircuitBreaker.OpenThreshold,
		CircuitBreakerHalfOpenTimeout:      c.CircuitBreaker.HalfOpenTimeout.Duration,
		CircuitBreakerResetFailuresTimeout: c.CircuitBreaker.ResetFailuresTimeout.Duration,
		BaseURL:                            c.BaseURL,
		ReferenceData: refdata.Options{
			Paths:    c.ReferenceData.Paths,
			Language: c.ReferenceData.Language,
		},
	}
}

type configCircuitBreaker struct {
	OpenThreshold        uint32   `json:"open_threshold"`
	HalfOpenTimeout      duration `json:"half_open_timeout"`
	ResetFailuresTimeout duration `json:"reset_failures_timeout"`
}

type configReferenceData struct {
	refdata.Paths

	Language string `json:"language"`
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != "" || c.Password != ""
}

func (c configBasicAuth) Validate() error {
	if c.Enabled() && (c.User == "" || c.Password == "") {
		return errors.New("both user and password are required for basic auth")
	}

	return nil
}

// parseConfig reads HJSON config. An empty path means an empty
// config: every value is default.
func parseConfig(fs afero.Fs, path string) (*config, error) {
	conf := config{}

	if path == "" {
		return &conf, nil
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse hjson: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c config) Validate() error {
	if _, _, err := net.SplitHostPort(c.GetListen()); err != nil {
		return fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	for name, value := range map[string]int{
		"cache_capacity":   c.CacheCapacity,
		"max_batch_size":   c.MaxBatchSize,
		"concurrency":      c.Concurrency,
		"rate_limit_burst": c.RateLimitBurst,
	} {
		if value < 0 {
			return fmt.Errorf("%s has to be positive: %d", name, value)
		}
	}

	if err := c.BasicAuth.Validate(); err != nil {
		return err
	}

	return nil
}
