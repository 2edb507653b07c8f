package ipinfolib

import (
	"net/http"
	"time"
)

// HTTPClient is a minimal interface of HTTP client which is used to
// access remote API. NewHTTPClient returns a default implementation.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Logger receives events which are worth to log. Client never logs on
// its own.
type Logger interface {
	ChunkFetched(size int, elapsed time.Duration)
	ChunkFailed(size int, err error)
	AddressFailed(ip string, err error)
}

type noopLogger struct{}

func (noopLogger) ChunkFetched(int, time.Duration) {}
func (noopLogger) ChunkFailed(int, error)          {}
func (noopLogger) AddressFailed(string, error)     {}
