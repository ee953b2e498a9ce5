package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"diningagent/internal/logging"
)

// ShutdownTimeout bounds how long in-flight requests may finish after stop.
const ShutdownTimeout = 10 * time.Second

// NewServer wraps handler in an http.Server listening on addr. The write
// timeout leaves room for the request deadline the orchestrator applies.
func NewServer(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	write := requestTimeout + 10*time.Second
	if requestTimeout <= 0 {
		write = 0
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       120 * time.Second,
	}
}

// Serve listens on server.Addr until ctx is done, then shuts down
// gracefully.
func Serve(ctx context.Context, server *http.Server, logger logging.Logger) error {
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	}
	return ServeListener(ctx, server, ln, logger)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, server *http.Server, ln net.Listener, logger logging.Logger) error {
	logger = logging.OrNop(logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on %s", ln.Addr())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		shutdownErr := server.Shutdown(shutdownCtx)

		serveErr := <-errCh
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
		if shutdownErr != nil {
			return fmt.Errorf("shutdown: %w", shutdownErr)
		}
		if serveErr != nil {
			return fmt.Errorf("server error: %w", serveErr)
		}
		logger.Info("Server stopped")
		return nil
	}
}
