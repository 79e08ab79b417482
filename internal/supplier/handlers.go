package supplier

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-procure/internal/common"
)

// Handler exposes supplier endpoints.
type Handler struct {
	service *Service
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{service: cfg.Service}
}

// Routes mounts the supplier endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/search", h.Search)
	r.Get("/recommend", h.Recommend)
	r.Get("/{id}", h.Get)
}

// List handles GET /api/v1/suppliers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), ParseCriteria(r.URL.Query()))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	page, perPage := common.ParsePagination(r, 50, 200)
	start, end := common.Window(len(items), page, perPage)
	w.Header().Set("X-Total-Count", strconv.Itoa(len(items)))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items[start:end],
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: len(items)},
	})
}

// Get handles GET /api/v1/suppliers/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.NotFound("supplier", err))
		return
	}
	sup, err := h.service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sup})
}

// Create handles POST /api/v1/suppliers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input Supplier
	if err := common.DecodeJSON(r, &input); err != nil {
		common.WriteError(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/suppliers/"+strconv.Itoa(created.ID))
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Search handles POST /api/v1/suppliers/search. An empty body searches with no criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var criteria Criteria
	if r.ContentLength != 0 {
		if err := common.DecodeJSON(r, &criteria); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	result, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	cache := "MISS"
	if result.Cached {
		cache = "HIT"
	}
	w.Header().Set("X-Cache", cache)
	w.Header().Set("X-Total-Count", strconv.Itoa(len(result.Items)))
	common.JSON(w, http.StatusOK, map[string]any{"data": result.Items})
}

// Recommend handles GET /api/v1/suppliers/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := h.service.Recommend(r.Context(), q.Get("category"), common.AtoiDefault(q.Get("limit"), DefaultRecommendLimit))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": recs})
}
