package supplier_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/supplier"
)

type listResponse struct {
	Data       []supplier.Supplier `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

type errorResponse struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := supplier.NewService(supplier.ServiceConfig{Store: supplier.NewMemoryStore(supplier.Fixtures()...)})
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Route("/api/v1/suppliers", supplier.NewHandler(supplier.HandlerConfig{Service: svc}).Routes)
	return r
}

func TestSupplierHandlers(t *testing.T) {
	router := newRouter(t)

	t.Run("list paginates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers?page=2&limit=4", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "6", rec.Header().Get("X-Total-Count"))
		var body listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, []int{5, 6}, ids(body.Data))
		require.Equal(t, 6, body.Pagination.TotalItems)
	})

	t.Run("list filters by query params", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers?certification=ISO%209001&sortBy=rating", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var body listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, []int{1, 5, 2, 4}, ids(body.Data))
	})

	t.Run("get by id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers/3", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Green Packaging Co")
	})

	t.Run("missing and malformed ids are not found", func(t *testing.T) {
		for _, path := range []string{"/api/v1/suppliers/42", "/api/v1/suppliers/abc"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusNotFound, rec.Code, path)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, "NOT_FOUND", body.Error.Code)
		}
	})

	t.Run("create then fetch", func(t *testing.T) {
		payload := `{"name":"Delta Logistics","category":"Logistics","location":"Lagos, Nigeria","rating":4.3,
			"certifications":[{"name":"ISO 28000","valid":true}]}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers", strings.NewReader(payload)))
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "/api/v1/suppliers/7", rec.Header().Get("Location"))

		get := httptest.NewRecorder()
		router.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers/7", nil))
		require.Equal(t, http.StatusOK, get.Code)
		require.Contains(t, get.Body.String(), "ISO 28000")
	})

	t.Run("create rejects invalid payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers", strings.NewReader(`{"name":""}`)))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "VALIDATION_FAILED", body.Error.Code)
		require.Contains(t, body.Error.Details, "name")

		bad := httptest.NewRecorder()
		router.ServeHTTP(bad, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers", strings.NewReader(`{`)))
		require.Equal(t, http.StatusBadRequest, bad.Code)
	})

	t.Run("search", func(t *testing.T) {
		body := `{"categories":["Electronics","Packaging"],"minRating":"4.1","sortBy":"rating"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/search", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, rec.Code)
		var out listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Equal(t, []int{3, 2}, ids(out.Data))
	})

	t.Run("recommend", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers/recommend?limit=2", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var out struct {
			Data []supplier.Recommendation `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		require.Len(t, out.Data, 2)
		require.Equal(t, 1, out.Data[0].Supplier.ID)
		require.Equal(t, 3, out.Data[1].Supplier.ID)
	})
}
