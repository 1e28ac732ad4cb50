package transport

import (
	"net/http"

	"github.com/opiegroup/boscotek2026-sub001/internal/observability"
	"github.com/opiegroup/boscotek2026-sub001/internal/rules"
)

func handleRules(evaluator *rules.Evaluator, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeConfiguration(r)
		if err != nil {
			WriteError(w, err)
			return
		}

		verdict, err := evaluator.Check(req.Configuration)
		if err != nil {
			WriteError(w, err)
			return
		}
		if metrics != nil {
			metrics.RecordRuleVerdict(req.Configuration.ProductID, string(verdict.Action))
		}
		WriteJSON(w, http.StatusOK, verdict)
	}
}
