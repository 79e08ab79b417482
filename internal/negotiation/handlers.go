package negotiation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Handler exposes negotiation endpoints.
type Handler struct {
	Service *Service
}

// Routes mounts the negotiation endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/message", h.Message)
	r.Get("/strategies", h.Strategies)
	r.Get("/dossier/{supplierId}", h.Dossier)
}

// Message handles POST /api/v1/negotiation/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	msg, err := h.Service.Message(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": msg})
}

// Strategies handles GET /api/v1/negotiation/strategies.
func (h *Handler) Strategies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := h.Service.Strategies(r.Context(), StrategyQuery{
		Supplier:    q.Get("supplier"),
		Category:    q.Get("category"),
		Description: q.Get("description"),
	})
	common.JSON(w, http.StatusOK, map[string]any{"data": res.Items, "fallback": res.Fallback})
}

// Dossier handles GET /api/v1/negotiation/dossier/{supplierId}. Clients asking
// for text/plain get the bare report.
func (h *Handler) Dossier(w http.ResponseWriter, r *http.Request) {
	id, err := supplier.ParseID(chi.URLParam(r, "supplierId"))
	if err != nil {
		common.WriteError(w, common.NotFound("supplier", err))
		return
	}
	d, err := h.Service.Dossier(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if r.Header.Get("Accept") == "text/plain" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(d.Report))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": d})
}
