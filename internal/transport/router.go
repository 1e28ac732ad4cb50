package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/opiegroup/boscotek2026-sub001/internal/catalog"
	"github.com/opiegroup/boscotek2026-sub001/internal/config"
	"github.com/opiegroup/boscotek2026-sub001/internal/observability"
	"github.com/opiegroup/boscotek2026-sub001/internal/pricing"
	"github.com/opiegroup/boscotek2026-sub001/internal/quote"
	"github.com/opiegroup/boscotek2026-sub001/internal/rules"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	Catalog    *catalog.Registry
	Calculator *pricing.Calculator
	Rules      *rules.Evaluator
	Quotes     *quote.Service

	// Verifier may be nil when token verification is disabled; every
	// request then prices at the public tier.
	Verifier TokenVerifier
	Resolver CallerResolver

	Metrics   *observability.Metrics
	Readiness observability.ReadinessChecks
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints bypass
// caller resolution.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.Use(Recovery(logger))
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)

	r.Get("/healthz", observability.HandleHealth())
	r.Get("/readyz", observability.HandleReady(deps.Readiness))
	if deps.Config.Observability.Metrics.Enabled {
		path := deps.Config.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, observability.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(ResolveCaller(deps.Verifier, deps.Resolver))
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))
		r.Use(RequestLogging(logger))
		if deps.Metrics != nil {
			r.Use(deps.Metrics.MetricsMiddleware)
		}
		if deps.Config.Observability.Tracing.Enabled {
			r.Use(observability.TracingMiddleware)
		}

		r.Get("/products", handleListProducts(deps.Catalog))
		r.Get("/products/{productId}", handleGetProduct(deps.Catalog))
		r.Get("/interiors", handleListInteriors(deps.Catalog))
		r.Get("/accessories", handleListAccessories(deps.Catalog))

		r.Post("/configurations/price", handlePrice(deps.Calculator, deps.Metrics))
		r.Post("/configurations/rules", handleRules(deps.Rules, deps.Metrics))
		r.Post("/configurations/normalize", handleNormalizeDrawers(deps.Catalog, deps.Metrics))
		r.Post("/configurations/reference-code", handleReferenceCode(deps.Catalog))

		r.Post("/quotes", handleCreateQuote(deps.Quotes, deps.Metrics))
		r.Get("/quotes", handleListQuotes(deps.Quotes))
		r.Get("/quotes/{quoteId}", handleGetQuote(deps.Quotes))
	})

	return r
}
