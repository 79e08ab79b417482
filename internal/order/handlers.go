package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Handler exposes order endpoints.
type Handler struct {
	Service *Service
}

// Routes mounts the order endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/quote", h.Quote)
	r.Get("/{orderId}", h.Get)
	r.Put("/{orderId}/status", h.UpdateStatus)
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20, 100)
	q := r.URL.Query()
	filter := ListFilter{
		Status: q.Get("status"),
		Limit:  perPage,
		Offset: common.Offset(page, perPage),
	}
	if raw := q.Get("supplierId"); raw != "" {
		id, err := supplier.ParseID(raw)
		if err != nil {
			common.WriteError(w, common.BadRequest("supplierId", "supplierId must be a positive integer", err))
			return
		}
		filter.SupplierID = id
	}
	orders, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       orders,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	o, err := h.Service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/orders/"+o.ID)
	common.JSON(w, http.StatusCreated, map[string]any{"data": o})
}

// Quote handles POST /api/v1/orders/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var d Draft
	if err := common.DecodeJSON(r, &d); err != nil {
		common.WriteError(w, err)
		return
	}
	q, err := h.Service.Quote(r.Context(), d)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": q})
}

// Get handles GET /api/v1/orders/{orderId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Get(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(o.Version)))
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

type statusRequest struct {
	Status  string `json:"status"`
	Version *int   `json:"version,omitempty"`
}

// UpdateStatus handles PUT /api/v1/orders/{orderId}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if req.Version == nil {
		if v, err := strconv.Unquote(r.Header.Get("If-Match")); err == nil {
			if n, err := strconv.Atoi(v); err == nil {
				req.Version = &n
			}
		}
	}
	o, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status, req.Version)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}
