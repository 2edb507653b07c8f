package main

import (
	"crypto/subtle"
	"net/http"
)

type basicAuthMiddleware struct {
	handler  http.Handler
	user     []byte
	password []byte
}

func (b *basicAuthMiddleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	user, pass, _ := req.BasicAuth()

	if subtle.ConstantTimeCompare(b.user, []byte(user))+subtle.ConstantTimeCompare(b.password, []byte(pass)) == 2 {
		b.handler.ServeHTTP(w, req)

		return
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="ipinfo"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": {"message": "Authentication is required"}}`)) // nolint: errcheck
}

// withBasicAuth protects handler if credentials are configured.
func withBasicAuth(handler http.Handler, auth configBasicAuth) http.Handler {
	if !auth.Enabled() {
		return handler
	}

	return &basicAuthMiddleware{
		handler:  handler,
		user:     []byte(auth.User),
		password: []byte(auth.Password),
	}
}
