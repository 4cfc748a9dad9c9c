package handlers

import (
	"context"
	"net/http"
	"time"
)

// RunHTTPServer serves handler on addr until ctx is cancelled, then drains
// in-flight requests with a bounded grace period. No repo in the pack
// wraps net/http with a third-party graceful-shutdown helper beyond gin
// itself for routing, so this stays on the standard library.
func RunHTTPServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
