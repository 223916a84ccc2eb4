package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"numgate/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Serve runs handler on addr until ctx is cancelled, then drains in-flight
// requests. It returns the listener error, or nil after a clean shutdown.
func Serve(ctx context.Context, logger *observability.Logger, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("server_start", map[string]any{"addr": addr})
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		listenErr <- err
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutdown", map[string]any{"addr": addr})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-listenErr
}
