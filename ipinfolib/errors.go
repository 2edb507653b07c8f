package ipinfolib

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/9seconds/ipinfo/refdata"
)

var (
	ErrClientShutdown       = errors.New("client was shutdown")
	ErrContextIsClosed      = errors.New("context is closed")
	ErrNoAddresses          = errors.New("no addresses to lookup")
	ErrMissingToken         = errors.New("access token is required")
	ErrInvalidAddress       = errors.New("invalid ip address")
	ErrRateLimited          = errors.New("rate limit exceeded")
	ErrNoData               = errors.New("no data for address in response")
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrTooManyAddresses     = errors.New("too many addresses")
)

// ConfigError is returned if client cannot be used because of incorrect
// configuration. Lookups are never attempted in that case.
type ConfigError struct {
	Option string
	Err    error
}

func (c *ConfigError) Error() string {
	return "incorrect option " + c.Option + ": " + c.Err.Error()
}

func (c *ConfigError) Unwrap() error {
	return c.Err
}

// AddressError is a per-address error for the input which is not an IP
// address.
type AddressError struct {
	Address string
	Reason  error
}

func (a *AddressError) Error() string {
	if a.Reason == nil {
		return ErrInvalidAddress.Error() + " " + strconv.Quote(a.Address)
	}

	return ErrInvalidAddress.Error() + " " + strconv.Quote(a.Address) + ": " + a.Reason.Error()
}

func (a *AddressError) Unwrap() error {
	return ErrInvalidAddress
}

// FetchError is a failure of the whole remote batch request. It applies
// to every address of that request.
type FetchError struct {
	StatusCode int
	Err        error
}

func (f *FetchError) Error() string {
	if f.StatusCode != 0 {
		return "cannot fetch a batch (status " + strconv.Itoa(f.StatusCode) + "): " + f.Err.Error()
	}

	return "cannot fetch a batch: " + f.Err.Error()
}

func (f *FetchError) Unwrap() error {
	return f.Err
}

// RemoteError is an error which remote API has returned for a single
// address in otherwise successful response.
type RemoteError struct {
	Title   string
	Message string
}

func (r *RemoteError) Error() string {
	switch {
	case r.Title != "" && r.Message != "":
		return "remote error: " + r.Title + ": " + r.Message
	case r.Title != "":
		return "remote error: " + r.Title
	}

	return "remote error: " + r.Message
}

// ErrorKind returns a short tag of the error.
func ErrorKind(err error) string {
	var (
		configErr *ConfigError
		loadErr   *refdata.LoadError
		remoteErr *RemoteError
		fetchErr  *FetchError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &configErr), errors.As(err, &loadErr):
		return "config"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.As(err, &remoteErr):
		return "remote"
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.As(err, &fetchErr):
		return "fetch"
	}

	return "unknown"
}

type jsonHTTPError struct {
	Error struct {
		Message string `json:"message"`
		Kind    string `json:"kind,omitempty"`
		Context string `json:"context,omitempty"`
	} `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	if h != nil && h.err != nil {
		value.Error.Kind = ErrorKind(h.err)
	}

	return json.Marshal(&value)
}
