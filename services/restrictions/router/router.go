// Package router wires the chi router: middleware chain plus the event
// and access-flag routes.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/config"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/handler"
	restmw "github.com/zacharyclement/feature-restrictions/services/restrictions/middleware"
	"github.com/zacharyclement/feature-restrictions/services/restrictions/observability"
)

// New returns a configured chi Router with the full middleware chain and
// all routes mounted.
func New(cfg *config.Config, appLogger zerolog.Logger, eventHandler *handler.EventHandler, accessHandler *handler.AccessHandler, metrics *observability.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(restmw.CORSMiddleware([]string{"*"}))
	r.Use(restmw.SecurityHeadersMiddleware)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(restmw.RequestLogger(appLogger))
	r.Use(restmw.MaxBodySize(cfg.MaxBodyBytes))

	rateLimiter := restmw.NewRateLimiter(appLogger, cfg.RateLimitEnabled, cfg.RateLimitRPM, cfg.RateLimitBurst)
	timeoutMW := restmw.NewTimeoutMiddleware(appLogger, cfg.RequestTimeout)

	r.Get("/healthz", handler.Healthz)

	if metrics != nil {
		r.Get("/metrics", metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(rateLimiter.Handler)
		r.Use(timeoutMW.Handler)
		r.Post("/event", eventHandler.PostEvent)
	})

	r.Get("/canmessage", accessHandler.CanMessage)
	r.Get("/canpurchase", accessHandler.CanPurchase)

	return r
}
