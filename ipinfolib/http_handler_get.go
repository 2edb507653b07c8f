package ipinfolib

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h httpHandler) handleGetSelf(w http.ResponseWriter, req *http.Request) {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		// RealIP middleware sets a bare address
		host = req.RemoteAddr
	}

	h.lookup(w, req, host)
}

func (h httpHandler) handleGetIP(w http.ResponseWriter, req *http.Request) {
	h.lookup(w, req, chi.URLParam(req, "ip"))
}

func (h httpHandler) lookup(w http.ResponseWriter, req *http.Request, ip string) {
	resolved, err := h.client.Lookup(req.Context(), ip)
	if err != nil {
		h.sendError(w, err, "Cannot resolve IP address", statusCodeFor(err))

		return
	}

	response := struct {
		Result *Result `json:"result"`
	}{
		Result: resolved,
	}

	h.encodeJSON(w, http.StatusOK, response)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Stats *UsageStats `json:"stats"`
	}{
		Stats: h.client.Stats(),
	}

	h.encodeJSON(w, http.StatusOK, response)
}
