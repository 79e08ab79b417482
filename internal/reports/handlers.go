package reports

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-procure/internal/common"
)

// Handler exposes reporting endpoints.
type Handler struct {
	Svc *Service
}

// Routes mounts the report endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.Summary)
}

// Summary handles GET /api/v1/reports/summary. Optional from/to (YYYY-MM-DD)
// bound the orders considered; days selects a trailing window instead.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "REPORTS_NOT_CONFIGURED", "reports service not configured", nil)
		return
	}
	q := r.URL.Query()
	var (
		rg  Range
		err error
	)
	if raw := q.Get("from"); raw != "" {
		if rg.From, err = time.Parse("2006-01-02", raw); err != nil {
			common.WriteError(w, common.BadRequest("from", "from must be a date (YYYY-MM-DD)", err))
			return
		}
	}
	if raw := q.Get("to"); raw != "" {
		if rg.To, err = time.Parse("2006-01-02", raw); err != nil {
			common.WriteError(w, common.BadRequest("to", "to must be a date (YYYY-MM-DD)", err))
			return
		}
	}
	if days := common.AtoiDefault(q.Get("days"), 0); days > 0 && rg.From.IsZero() && rg.To.IsZero() {
		today := h.Svc.now().UTC().Truncate(24 * time.Hour)
		rg.To = today.AddDate(0, 0, 1)
		rg.From = rg.To.AddDate(0, 0, -days)
	}
	if !rg.From.IsZero() && !rg.To.IsZero() && !rg.From.Before(rg.To) {
		common.WriteError(w, common.BadRequest("from", "from must be before to", nil))
		return
	}
	summary, err := h.Svc.Summary(r.Context(), rg)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}
