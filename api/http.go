// Package api wires the Control API's HTTP router (§4.J): route table,
// CORS, request logging and optional bearer-token auth around the
// handlers package.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/clipforge/viralclip/config"
	"github.com/clipforge/viralclip/handlers"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/middleware"
	"github.com/julienschmidt/httprouter"
)

// ListenAndServe starts the Control API and blocks until ctx is
// cancelled, then shuts the server down gracefully.
func ListenAndServe(ctx context.Context, cli config.Cli, h *handlers.ViralClipHandlersCollection) error {
	router := NewRouter(cli, h)
	server := http.Server{Addr: cli.HTTPAddress(), Handler: router}
	ctx, cancel := context.WithCancel(ctx)

	log.LogNoJobID("starting control API", "version", config.Version, "addr", cli.HTTPAddress())

	var serveErr error
	go func() {
		serveErr = server.ListenAndServe()
		cancel()
	}()

	<-ctx.Done()
	if serveErr != nil && serveErr != http.ErrServerClosed {
		return serveErr
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// NewRouter builds the route table for the Control API (§4.J).
func NewRouter(cli config.Cli, h *handlers.ViralClipHandlersCollection) *httprouter.Router {
	router := httprouter.New()

	withLogging := middleware.LogRequest()
	withCORS := middleware.AllowCORS()

	wrap := func(next httprouter.Handle) httprouter.Handle {
		wrapped := withLogging(withCORS(next))
		if cli.APIToken == "" {
			return wrapped
		}
		return middleware.IsAuthorized(cli.APIToken, wrapped)
	}

	router.GET("/health", withLogging(h.Health()))
	router.POST("/jobs", wrap(h.SubmitJob()))
	router.GET("/jobs/:id", wrap(h.GetJob()))
	router.POST("/jobs/:id/cancel", wrap(h.CancelJob()))
	router.GET("/clips", wrap(h.ListClips()))
	router.GET("/outputs/:filename", wrap(h.ServeOutput()))
	router.GET("/templates", wrap(h.ListTemplates()))
	router.GET("/video-info", wrap(h.VideoInfo()))

	return router
}
