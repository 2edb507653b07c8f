package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/9seconds/ipinfo/ipinfolib"
)

type logger struct {
	fetchLog   zerolog.Logger
	addressLog zerolog.Logger
}

func (l *logger) ChunkFetched(size int, elapsed time.Duration) {
	l.fetchLog.Debug().Int("size", size).Dur("elapsed", elapsed).Msg("Chunk was fetched")
}

func (l *logger) ChunkFailed(size int, err error) {
	l.fetchLog.Error().Int("size", size).Str("kind", ipinfolib.ErrorKind(err)).Err(err).Msg("")
}

func (l *logger) AddressFailed(ip string, err error) {
	l.addressLog.Warn().Str("ip", ip).Str("kind", ipinfolib.ErrorKind(err)).Err(err).Msg("")
}

func newRootLogger(debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func newLogger(root zerolog.Logger) ipinfolib.Logger {
	return &logger{
		fetchLog:   root.With().Str("event_name", "fetch").Logger(),
		addressLog: root.With().Str("event_name", "address").Logger(),
	}
}

// newHTTPLogMiddleware writes a line per served request.
func newHTTPLogMiddleware(root zerolog.Logger) func(http.Handler) http.Handler {
	log := root.With().Str("event_name", "http").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			next.ServeHTTP(ww, req)

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_addr", req.RemoteAddr).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(started)).
				Msg("")
		})
	}
}
