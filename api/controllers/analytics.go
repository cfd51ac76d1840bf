package controllers

import (
	"net/http"
	"time"

	"github.com/syed-hamad/Retail-POS-sub001/api/responses"
	"github.com/syed-hamad/Retail-POS-sub001/api/validators"
	"github.com/syed-hamad/Retail-POS-sub001/internal/analytics"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
)

// AnalyticsSummary serves the sales summary for a time window. The window
// defaults to the last 24 hours.
func AnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionOrFail(w, r, logg)
		if !ok {
			return
		}
		now := time.Now().UTC()
		from, err := validators.ParseQueryTime(r, "from", now.Add(-24*time.Hour))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to", now)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), sess, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
