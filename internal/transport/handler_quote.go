package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opiegroup/boscotek2026-sub001/internal/observability"
	"github.com/opiegroup/boscotek2026-sub001/internal/quote"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// maxQuoteBody caps the quote request payload. Configurations are small;
// anything larger is malformed or hostile.
const maxQuoteBody = 1 << 20

func handleCreateQuote(quotes *quote.Service, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The raw bytes are hashed for idempotent replay detection, so the
		// body is read once and decoded from the captured copy.
		body, err := io.ReadAll(io.LimitReader(r.Body, maxQuoteBody))
		if err != nil {
			WriteError(w, model.NewBadRequestError("unable to read request body"))
			return
		}

		var req configurationRequest
		if err := json.Unmarshal(body, &req); err != nil {
			WriteError(w, model.NewBadRequestError("invalid JSON body"))
			return
		}
		if req.Configuration.ProductID == "" {
			WriteValidationError(w, []model.FieldError{
				{Field: "configuration.product_id", Code: "required", Message: "a product must be selected"},
			})
			return
		}

		caller := model.CallerContextFrom(r.Context())

		q, err := quotes.Create(r.Context(), quote.CreateRequest{
			State:          req.Configuration,
			Currency:       req.Currency,
			IdempotencyKey: r.Header.Get("X-Idempotency-Key"),
			RawBody:        body,
		}, caller)
		if err != nil {
			if metrics != nil {
				var env *model.ErrorEnvelope
				if errors.As(err, &env) && env.Code == model.ErrConflict {
					metrics.RecordQuoteIdempotencyConflict()
				}
			}
			WriteError(w, err)
			return
		}

		if metrics != nil {
			metrics.RecordQuoteCreated(q.ProductID, tierCode(caller))
		}
		WriteJSON(w, http.StatusCreated, q)
	}
}

func handleGetQuote(quotes *quote.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quoteID := chi.URLParam(r, "quoteId")
		caller := model.CallerContextFrom(r.Context())

		q, err := quotes.Get(r.Context(), quoteID)
		if err != nil {
			WriteError(w, err)
			return
		}

		// A quote owned by a signed-in buyer is visible only to that buyer
		// and to staff. Anonymous quotes stay retrievable by ID alone.
		if q.SubjectID != "" && !canViewQuote(caller, q.SubjectID) {
			WriteError(w, model.NewNotFoundError("Unknown quote: "+quoteID))
			return
		}
		WriteJSON(w, http.StatusOK, q)
	}
}

func handleListQuotes(quotes *quote.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := model.CallerContextFrom(r.Context())

		filters := quote.Filters{
			ProductID: r.URL.Query().Get("product_id"),
			Limit:     queryInt(r, "limit"),
			Offset:    queryInt(r, "offset"),
		}

		list, err := quotes.List(r.Context(), caller, filters)
		if err != nil {
			WriteError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"quotes": list})
	}
}

func canViewQuote(caller *model.CallerContext, ownerID string) bool {
	if caller == nil {
		return false
	}
	return caller.Staff || caller.SubjectID == ownerID
}
