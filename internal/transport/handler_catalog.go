package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opiegroup/boscotek2026-sub001/internal/catalog"
	"github.com/opiegroup/boscotek2026-sub001/internal/solver"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// productSummary is the list-view shape of a product. The full option tree
// is only returned by the single-product endpoint.
type productSummary struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Series    string  `json:"series"`
	Segment   string  `json:"segment,omitempty"`
	BasePrice float64 `json:"base_price"`
}

func handleListProducts(registry *catalog.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		products := registry.Products()
		out := make([]productSummary, 0, len(products))
		for _, p := range products {
			out = append(out, productSummary{
				ID:        p.ID,
				Label:     p.Label,
				Series:    p.Series,
				Segment:   p.Segment,
				BasePrice: p.BasePrice,
			})
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"products": out,
			"checksum": registry.Checksum(),
		})
	}
}

func handleGetProduct(registry *catalog.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		product, ok := registry.Product(productID)
		if !ok {
			WriteError(w, model.NewNotFoundError("Unknown product: "+productID))
			return
		}
		WriteJSON(w, http.StatusOK, product)
	}
}

// handleListInteriors returns drawer interiors compatible with the given
// cabinet width, depth, and drawer front height. Missing filters mean "all".
func handleListInteriors(registry *catalog.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		widthMM := queryInt(r, "width_mm")
		depthMM := queryInt(r, "depth_mm")
		frontMM := queryInt(r, "front_mm")

		interiors := registry.Interiors()
		if widthMM > 0 || depthMM > 0 || frontMM > 0 {
			interiors = solver.FilterInteriors(interiors, widthMM, depthMM, frontMM)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"interiors": interiors})
	}
}

func handleListAccessories(registry *catalog.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frontMM := queryInt(r, "front_mm")

		accessories := registry.Accessories()
		if frontMM > 0 {
			accessories = solver.FilterAccessories(accessories, frontMM)
		}
		WriteJSON(w, http.StatusOK, map[string]any{"accessories": accessories})
	}
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}
