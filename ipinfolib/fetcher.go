package ipinfolib

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type remotePayload struct {
	Error jsoniter.RawMessage `json:"error"`

	Result
}

type remoteErrorObject struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type remoteMapResponse struct {
	Status    string `json:"status"`
	ReportURL string `json:"reportUrl"`
}

// fetcher talks to remote API. It holds no state between calls and never
// retries.
type fetcher struct {
	baseURL string
	token   string
	timeout time.Duration
	client  HTTPClient
}

// FetchBatch resolves a single chunk. A returned error is a chunk-level
// failure; per-address failures are reported in-band.
func (f *fetcher) FetchBatch(ctx context.Context, ips []string) (map[string]BatchItem, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(ips)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("cannot encode a request: %w", err)}
	}

	req, err := f.newRequest(ctx, http.MethodPost, "/batch", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	response := map[string]jsoniter.RawMessage{}

	if err := f.do(req, &response); err != nil {
		return nil, err
	}

	rv := make(map[string]BatchItem, len(ips))

	for _, ip := range ips {
		raw, ok := response[ip]
		if !ok {
			rv[ip] = BatchItem{Err: ErrNoData}

			continue
		}

		result, err := decodePayload(raw)
		if err != nil {
			rv[ip] = BatchItem{Err: err}

			continue
		}

		if result.IP == "" {
			result.IP = ip
		}

		rv[ip] = BatchItem{Result: result}
	}

	return rv, nil
}

// FetchSelf resolves an address of the caller as remote API sees it.
func (f *fetcher) FetchSelf(ctx context.Context) (*Result, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	req, err := f.newRequest(ctx, http.MethodGet, "/json", nil)
	if err != nil {
		return nil, err
	}

	var raw jsoniter.RawMessage

	if err := f.do(req, &raw); err != nil {
		return nil, err
	}

	return decodePayload(raw)
}

// FetchMap uploads addresses to the map tool and returns a report URL.
func (f *fetcher) FetchMap(ctx context.Context, ips []string) (string, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(ips)
	if err != nil {
		return "", &FetchError{Err: fmt.Errorf("cannot encode a request: %w", err)}
	}

	req, err := f.newRequest(ctx, http.MethodPost, "/tools/map?cli=1", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	response := remoteMapResponse{}

	if err := f.do(req, &response); err != nil {
		return "", err
	}

	if response.ReportURL == "" {
		return "", &FetchError{Err: fmt.Errorf("no report url in response (status %q)", response.Status)}
	}

	return response.ReportURL, nil
}

func (f *fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, f.timeout)
}

func (f *fetcher) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, body)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("cannot build a request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	return req, nil
}

func (f *fetcher) do(req *http.Request, target interface{}) error {
	resp, err := f.client.Do(req)
	if err != nil {
		var fetchErr *FetchError

		if errors.As(err, &fetchErr) {
			return err
		}

		return &FetchError{Err: fmt.Errorf("cannot send a request: %w", err)}
	}

	defer flushResponse(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &FetchError{StatusCode: resp.StatusCode, Err: ErrRateLimited}
	case resp.StatusCode >= http.StatusBadRequest:
		return &FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	decoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := decoder.Decode(target); err != nil {
		return &FetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("cannot parse a response: %w", err),
		}
	}

	return nil
}

func decodePayload(raw jsoniter.RawMessage) (*Result, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &RemoteError{Message: "unexpected payload " + string(trimmed)}
	}

	payload := remotePayload{}

	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &RemoteError{Message: "cannot parse payload: " + err.Error()}
	}

	if err := decodeRemoteError(payload.Error); err != nil {
		return nil, err
	}

	result := payload.Result

	return &result, nil
}

func decodeRemoteError(raw jsoniter.RawMessage) error {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var message string

	if err := json.Unmarshal(raw, &message); err == nil {
		return &RemoteError{Message: message}
	}

	obj := remoteErrorObject{}

	if err := json.Unmarshal(raw, &obj); err != nil {
		return &RemoteError{Message: string(raw)}
	}

	return &RemoteError{Title: obj.Title, Message: obj.Message}
}
