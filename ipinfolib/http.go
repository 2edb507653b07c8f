package ipinfolib

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type httpHandler struct {
	client *Client
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	h.encodeJSON(w, e.StatusCode(), e)
}

// statusCodeFor maps errors of the client to HTTP statuses.
func statusCodeFor(err error) int {
	var (
		configErr *ConfigError
		fetchErr  *FetchError
	)

	switch {
	case errors.Is(err, ErrClientShutdown):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNoAddresses), errors.Is(err, ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, ErrNoData):
		return http.StatusNotFound
	}

	return http.StatusBadGateway
}

// NewHTTPHandler builds a handler which exposes the client:
//
//	GET  /       - details of the requester address
//	GET  /{ip}   - details of the given address
//	POST /batch  - details of a set of addresses, {"ips": [...]}
//	GET  /stats  - usage statistics of the client
func NewHTTPHandler(client *Client) http.Handler {
	handler := httpHandler{
		client: client,
	}
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Recoverer)

	router.Get("/", handler.handleGetSelf)
	router.Get("/stats", handler.handleGetStats)
	router.Get("/{ip}", handler.handleGetIP)
	router.Post("/batch", handler.handlePostBatch)

	router.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		handler.sendError(w, nil, "This HTTP method is not allowed", http.StatusMethodNotAllowed)
	})
	router.NotFound(func(w http.ResponseWriter, req *http.Request) {
		handler.sendError(w, nil, "Unknown endpoint", http.StatusNotFound)
	})

	return router
}
