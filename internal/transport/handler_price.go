package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/opiegroup/boscotek2026-sub001/internal/observability"
	"github.com/opiegroup/boscotek2026-sub001/internal/pricing"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// configurationRequest is the body shared by the pricing, rules, drawer,
// and reference-code endpoints.
type configurationRequest struct {
	Configuration model.ConfigurationState `json:"configuration"`
	Currency      string                   `json:"currency,omitempty"`
}

func decodeConfiguration(r *http.Request) (configurationRequest, error) {
	var req configurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, model.NewBadRequestError("invalid JSON body")
	}
	if req.Configuration.ProductID == "" {
		return req, model.NewValidationError([]model.FieldError{
			{Field: "configuration.product_id", Code: "required", Message: "a product must be selected"},
		})
	}
	return req, nil
}

func handlePrice(calculator *pricing.Calculator, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeConfiguration(r)
		if err != nil {
			WriteError(w, err)
			return
		}
		caller := model.CallerContextFrom(r.Context())

		_, span := observability.StartSpan(r.Context(), "pricing.Price",
			observability.AttrProductID.String(req.Configuration.ProductID),
			observability.AttrCurrency.String(req.Currency),
		)

		start := time.Now()
		result, err := calculator.Price(req.Configuration, caller, req.Currency)
		observability.EndSpanWithError(span, err)

		if metrics != nil {
			status := "ok"
			if err != nil {
				status = "error"
			}
			metrics.RecordPricing(req.Configuration.ProductID, tierCode(caller), req.Currency, status, time.Since(start))
		}
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, result)
	}
}

func tierCode(caller *model.CallerContext) string {
	if caller == nil {
		return ""
	}
	return caller.Tier.Code
}
