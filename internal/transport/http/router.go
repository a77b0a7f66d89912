// Package httptransport assembles the HTTP surface: middleware chain, public
// auth endpoints, and the authenticated insurance API.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "vims/internal/auth/handler"
	inshandler "vims/internal/insurance/handler"
	newshandler "vims/internal/news/handler"
	mwauth "vims/pkg/platform/middleware/auth"
	"vims/pkg/platform/middleware/metadata"
	"vims/pkg/platform/middleware/requestid"
	"vims/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Auth      *authhandler.Handler
	Insurance *inshandler.Handler
	News      *newshandler.Handler
	Validator mwauth.TokenValidator
	Sessions  mwauth.SessionChecker
	Logger    *slog.Logger
}

// NewRouter wires the full middleware chain and all endpoints. The order
// matters: the request time is pinned first so everything downstream,
// including audit enrichment, observes one consistent now.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requesttime.Middleware)
	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	d.Auth.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(mwauth.RequireAuth(d.Validator, d.Sessions, d.Logger))
		d.Auth.RegisterProtected(r)
		d.Insurance.Register(r)
		d.News.Register(r)
	})

	return r
}
