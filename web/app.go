package web

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error
}

// New wraps h in an HTTP server on :port. cleanup runs after shutdown.
func New(port string, h *Handler, cleanup func() error) *App {
	return &App{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           h.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		cleanup: cleanup,
	}
}

func (a *App) Run() error {
	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
