package compliance

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

// Handler exposes compliance endpoints.
type Handler struct {
	Service *Service
	// MaxMemory bounds the multipart bytes held in memory; the rest spills to disk.
	MaxMemory int64
}

// Routes mounts the compliance endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/analyze-document", h.AnalyzeDocument)
	r.Get("/requirements", h.Requirements)
	r.Post("/verify", h.Verify)
	r.Get("/items", h.Items)
}

// AnalyzeDocument handles POST /api/v1/compliance/analyze-document (multipart).
func (h *Handler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	maxMemory := h.MaxMemory
	if maxMemory <= 0 {
		maxMemory = 8 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "upload exceeds size limit", nil)
			return
		}
		common.WriteError(w, common.BadRequest("file", "multipart form expected", err))
		return
	}
	verrs := common.ValidationErrors{}
	supplierID, err := supplier.ParseID(r.FormValue("supplierId"))
	if err != nil {
		verrs.Add("supplierId", "must be a positive integer")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		verrs.Add("file", "is required")
	} else {
		defer file.Close()
	}
	var expires *time.Time
	if raw := strings.TrimSpace(r.FormValue("expiresAt")); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			verrs.Add("expiresAt", "must be a date (YYYY-MM-DD)")
		} else {
			expires = &t
		}
	}
	if !verrs.Empty() {
		common.WriteError(w, verrs)
		return
	}
	item, err := h.Service.AnalyzeDocument(r.Context(), Upload{
		SupplierID: supplierID,
		FileName:   header.Filename,
		Category:   r.FormValue("category"),
		ExpiresAt:  expires,
		Notes:      r.FormValue("notes"),
		Content:    file,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

// Requirements handles GET /api/v1/compliance/requirements.
func (h *Handler) Requirements(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Service.Requirements(r.URL.Query().Get("category"))})
}

type verifyRequest struct {
	ItemID string `json:"itemId"`
}

// Verify handles POST /api/v1/compliance/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	item, err := h.Service.Verify(r.Context(), req.ItemID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": item})
}

// Items handles GET /api/v1/compliance/items.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{Status: q.Get("status")}
	if raw := q.Get("supplierId"); raw != "" {
		id, err := supplier.ParseID(raw)
		if err != nil {
			common.WriteError(w, common.BadRequest("supplierId", "supplierId must be a positive integer", err))
			return
		}
		f.SupplierID = id
	}
	items, err := h.Service.Items(r.Context(), f)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// SupplierCompliance handles GET /api/v1/suppliers/{id}/compliance.
func (h *Handler) SupplierCompliance(w http.ResponseWriter, r *http.Request) {
	id, err := supplier.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.NotFound("supplier", err))
		return
	}
	summary, err := h.Service.SupplierSummary(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
