package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/9seconds/ipinfo/ipinfolib"
)

const (
	serverRequestTimeout  = 60 * time.Second
	serverShutdownTimeout = 10 * time.Second
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeClient(conf *config, root zerolog.Logger) (*ipinfolib.Client, error) {
	opts := conf.ClientOpts()
	opts.Logger = newLogger(root)

	client, err := ipinfolib.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("cannot create a client: %w", err)
	}

	return client, nil
}

func makeRouter(conf *config, client *ipinfolib.Client, root zerolog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(newHTTPLogMiddleware(root))
	router.Use(middleware.Timeout(serverRequestTimeout))
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", ipinfolib.MetricsHandler())
	router.Mount("/", ipinfolib.NewHTTPHandler(client))

	return withBasicAuth(router, conf.BasicAuth)
}

// serve runs HTTP server until ctx is closed. Then it waits a bit for
// active requests.
func serve(ctx context.Context, conf *config, client *ipinfolib.Client, root zerolog.Logger) error {
	srv := &http.Server{
		Addr:              conf.GetListen(),
		Handler:           makeRouter(conf, client, root),
		ReadHeaderTimeout: serverRequestTimeout,
	}

	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.ListenAndServe()
	}()

	root.Info().Str("listen", conf.GetListen()).Msg("Server has started")

	select {
	case err := <-errChan:
		return fmt.Errorf("server has failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shutdown server: %w", err)
	}

	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server has failed: %w", err)
	}

	root.Info().Msg("Server has stopped")

	return nil
}
