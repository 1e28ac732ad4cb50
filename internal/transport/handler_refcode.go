package transport

import (
	"net/http"

	"github.com/opiegroup/boscotek2026-sub001/internal/catalog"
	"github.com/opiegroup/boscotek2026-sub001/internal/refcode"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

func handleReferenceCode(registry *catalog.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeConfiguration(r)
		if err != nil {
			WriteError(w, err)
			return
		}

		product, ok := registry.Product(req.Configuration.ProductID)
		if !ok {
			WriteError(w, model.NewNotFoundError("Unknown product: "+req.Configuration.ProductID))
			return
		}

		WriteJSON(w, http.StatusOK, map[string]string{
			"reference_code": refcode.Generate(product, req.Configuration),
		})
	}
}
