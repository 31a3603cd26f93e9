package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/digideskio/git-cinnabar/internal/fakequeue"
	"github.com/digideskio/git-cinnabar/internal/inmemorystore"
	"github.com/gin-gonic/gin"
)

// ServeFakeQueue serves the in-memory index and queue on ln until ctx is
// done, then shuts the server down gracefully.
func (a *App) ServeFakeQueue(ctx context.Context, ln net.Listener) error {
	logger := a.logger
	logger.Debug("Configuring fake queue server.")
	gin.SetMode(gin.ReleaseMode)

	server := &http.Server{
		Handler:           fakequeue.NewRouter(inmemorystore.New(), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Fake queue server starting.", "address", "http://"+ln.Addr().String())
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Fake queue server failed unexpectedly.", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("Shutting down fake queue server.")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Fake queue server shutdown failed.", "error", err)
		return err
	}
	logger.Debug("Fake queue server shut down gracefully.")
	return nil
}
