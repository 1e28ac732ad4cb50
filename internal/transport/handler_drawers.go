package transport

import (
	"net/http"

	"github.com/opiegroup/boscotek2026-sub001/internal/catalog"
	"github.com/opiegroup/boscotek2026-sub001/internal/observability"
	"github.com/opiegroup/boscotek2026-sub001/internal/solver"
	"github.com/opiegroup/boscotek2026-sub001/model"
)

// drawerStackResponse reports a normalized drawer stack and its height
// budget so a client can render the fill gauge without re-deriving it.
type drawerStackResponse struct {
	Drawers     []model.DrawerConfiguration `json:"drawers"`
	CapacityMM  float64                     `json:"capacity_mm"`
	UsedMM      float64                     `json:"used_mm"`
	RemainingMM float64                     `json:"remaining_mm"`
	Rejected    int                         `json:"rejected,omitempty"`
}

// handleNormalizeDrawers trims a submitted drawer stack to the product's
// height capacity. Drawers that no longer fit are dropped front-to-back
// and counted in the response.
func handleNormalizeDrawers(registry *catalog.Registry, metrics *observability.Metrics) http.HandlerFunc {
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
		group, ok := drawerStackGroup(product)
		if !ok {
			WriteError(w, model.NewBadRequestError("Product has no drawer stack"))
			return
		}

		stack := solver.New(group, solver.CapacityFor(product, req.Configuration))
		normalized := make([]model.DrawerConfiguration, 0, len(req.Configuration.Drawers))
		rejected := 0
		for _, d := range req.Configuration.Drawers {
			next, ok := stack.Add(normalized, d)
			if !ok {
				rejected++
				continue
			}
			normalized = next
		}

		if metrics != nil {
			for i := 0; i < rejected; i++ {
				metrics.RecordDrawerRejection(product.ID)
			}
		}

		WriteJSON(w, http.StatusOK, drawerStackResponse{
			Drawers:     normalized,
			CapacityMM:  stack.CapacityMM(),
			UsedMM:      stack.UsedHeight(normalized),
			RemainingMM: stack.RemainingHeight(normalized),
			Rejected:    rejected,
		})
	}
}

func drawerStackGroup(product model.ProductDefinition) (model.OptionGroup, bool) {
	for _, g := range product.Groups {
		if g.Type == model.GroupDrawerStack {
			return g, true
		}
	}
	return model.OptionGroup{}, false
}
