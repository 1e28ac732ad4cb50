package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Histogram bucket definitions.
var (
	httpDurationBuckets   = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	engineDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1}
	bodySizeBuckets       = []float64{100, 1024, 10240, 102400, 1048576}
)

// Metrics holds all Prometheus metric instruments for the configurator.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestSizeBytes  *prometheus.HistogramVec
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Pricing metrics
	PricingsTotal   *prometheus.CounterVec
	PricingDuration *prometheus.HistogramVec

	// Commercial rule metrics
	RuleVerdictsTotal *prometheus.CounterVec

	// Drawer solver metrics
	DrawerRejectionsTotal *prometheus.CounterVec

	// Quote metrics
	QuotesCreatedTotal      *prometheus.CounterVec
	QuoteIdempotentReplays  prometheus.Counter
	QuoteIdempotencyConflicts prometheus.Counter

	// Identity metrics
	TierCacheHitsTotal   prometheus.Counter
	TierCacheMissesTotal prometheus.Counter

	// Catalog metrics
	CatalogReloadTotal *prometheus.CounterVec
	CatalogProducts    prometheus.Gauge
}

// InitMetrics creates and registers all Prometheus metric instruments.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boscotek_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boscotek_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPRequestSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boscotek_http_request_size_bytes",
			Help:    "HTTP request body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),
		HTTPResponseSizeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boscotek_http_response_size_bytes",
			Help:    "HTTP response body size in bytes.",
			Buckets: bodySizeBuckets,
		}, []string{"method", "path_pattern"}),

		// Pricing
		PricingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boscotek_pricings_total",
			Help: "Total number of pricing calculations.",
		}, []string{"product_id", "tier", "currency", "status"}),
		PricingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "boscotek_pricing_duration_seconds",
			Help:    "Pricing calculation duration in seconds.",
			Buckets: engineDurationBuckets,
		}, []string{"product_id"}),

		// Rules
		RuleVerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boscotek_rule_verdicts_total",
			Help: "Total number of commercial rule verdicts by action.",
		}, []string{"product_id", "action"}),

		// Solver
		DrawerRejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boscotek_drawer_rejections_total",
			Help: "Total number of drawer additions rejected for lack of capacity.",
		}, []string{"product_id"}),

		// Quotes
		QuotesCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boscotek_quotes_created_total",
			Help: "Total number of quotes created.",
		}, []string{"product_id", "tier"}),
		QuoteIdempotentReplays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boscotek_quote_idempotent_replays_total",
			Help: "Total quote requests answered from the idempotency store.",
		}),
		QuoteIdempotencyConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boscotek_quote_idempotency_conflicts_total",
			Help: "Total idempotency key reuses with different input.",
		}),

		// Identity
		TierCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boscotek_tier_cache_hits_total",
			Help: "Total tier cache hits.",
		}),
		TierCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "boscotek_tier_cache_misses_total",
			Help: "Total tier cache misses.",
		}),

		// Catalog
		CatalogReloadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "boscotek_catalog_reload_total",
			Help: "Total catalog reloads.",
		}, []string{"status"}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "boscotek_catalog_products",
			Help: "Number of loaded product definitions.",
		}),
	}

	reg.MustRegister(
		// HTTP
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestSizeBytes,
		m.HTTPResponseSizeBytes,
		// Pricing
		m.PricingsTotal,
		m.PricingDuration,
		// Rules
		m.RuleVerdictsTotal,
		// Solver
		m.DrawerRejectionsTotal,
		// Quotes
		m.QuotesCreatedTotal,
		m.QuoteIdempotentReplays,
		m.QuoteIdempotencyConflicts,
		// Identity
		m.TierCacheHitsTotal,
		m.TierCacheMissesTotal,
		// Catalog
		m.CatalogReloadTotal,
		m.CatalogProducts,
	)

	return m
}

// --- Recording helpers ---

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration, reqSize, respSize int) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
	m.HTTPRequestSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(reqSize))
	m.HTTPResponseSizeBytes.WithLabelValues(method, pathPattern).Observe(float64(respSize))
}

// RecordPricing records one pricing calculation.
func (m *Metrics) RecordPricing(productID, tier, currency, status string, duration time.Duration) {
	m.PricingsTotal.WithLabelValues(productID, tier, currency, status).Inc()
	m.PricingDuration.WithLabelValues(productID).Observe(duration.Seconds())
}

// RecordRuleVerdict records a commercial rule verdict.
func (m *Metrics) RecordRuleVerdict(productID, action string) {
	m.RuleVerdictsTotal.WithLabelValues(productID, action).Inc()
}

// RecordDrawerRejection records a drawer addition rejected for capacity.
func (m *Metrics) RecordDrawerRejection(productID string) {
	m.DrawerRejectionsTotal.WithLabelValues(productID).Inc()
}

// RecordQuoteCreated records a quote creation.
func (m *Metrics) RecordQuoteCreated(productID, tier string) {
	m.QuotesCreatedTotal.WithLabelValues(productID, tier).Inc()
}

// RecordQuoteIdempotentReplay records a quote replayed from the idempotency store.
func (m *Metrics) RecordQuoteIdempotentReplay() {
	m.QuoteIdempotentReplays.Inc()
}

// RecordQuoteIdempotencyConflict records an idempotency key conflict.
func (m *Metrics) RecordQuoteIdempotencyConflict() {
	m.QuoteIdempotencyConflicts.Inc()
}

// RecordTierCacheHit records a tier cache hit.
func (m *Metrics) RecordTierCacheHit() {
	m.TierCacheHitsTotal.Inc()
}

// RecordTierCacheMiss records a tier cache miss.
func (m *Metrics) RecordTierCacheMiss() {
	m.TierCacheMissesTotal.Inc()
}

// RecordCatalogReload records a catalog reload.
func (m *Metrics) RecordCatalogReload(status string) {
	m.CatalogReloadTotal.WithLabelValues(status).Inc()
}

// SetCatalogProducts sets the number of loaded product definitions.
func (m *Metrics) SetCatalogProducts(count float64) {
	m.CatalogProducts.Set(count)
}

// --- HTTP Middleware ---

// MetricsMiddleware returns HTTP middleware that records request metrics using
// chi's route pattern (not the actual URL path) to avoid label cardinality
// explosion.
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metricsResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		pathPattern := routePattern(r)
		reqSize := 0
		if r.ContentLength > 0 {
			reqSize = int(r.ContentLength)
		}

		m.RecordHTTPRequest(r.Method, pathPattern, sw.status, duration, reqSize, sw.bytes)
	})
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// routePattern extracts chi's route pattern from the request context.
// Falls back to the raw URL path if no pattern is found.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.Join(rctx.RoutePatterns, "")
	// chi route patterns have trailing /*, remove it.
	pattern = strings.TrimSuffix(pattern, "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

// metricsResponseWriter wraps http.ResponseWriter to capture status and bytes.
type metricsResponseWriter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (w *metricsResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metricsResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}
