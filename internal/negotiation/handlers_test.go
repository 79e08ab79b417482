package negotiation_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/negotiation"
)

func newRouter(t *testing.T, gen negotiation.Generator) http.Handler {
	h := &negotiation.Handler{Service: newService(t, gen)}
	r := chi.NewRouter()
	r.Route("/api/v1/negotiation", h.Routes)
	return r
}

func TestMessageEndpointReportsFallback(t *testing.T) {
	r := newRouter(t, &stubGenerator{err: errors.New("timeout")})
	body := `{"type":"initial","supplierId":3,"keyPoints":["Recycled content"]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/negotiation/message", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data negotiation.Message `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Data.Fallback)
	require.Equal(t, "Partnership inquiry for Green Packaging Co", resp.Data.Subject)
	require.Equal(t, []string{"Recycled content"}, resp.Data.KeyPoints)
}

func TestMessageEndpointErrors(t *testing.T) {
	r := newRouter(t, &stubGenerator{})
	cases := []struct {
		body string
		code int
	}{
		{`{`, http.StatusBadRequest},
		{`{"supplier":"Acme"}`, http.StatusUnprocessableEntity},
		{`{"type":"initial","supplierId":77}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/negotiation/message", strings.NewReader(tc.body)))
		require.Equal(t, tc.code, rec.Code, tc.body)
	}
}

func TestStrategiesEndpoint(t *testing.T) {
	r := newRouter(t, &stubGenerator{err: errors.New("boom")})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/negotiation/strategies?supplier=Acme&category=Machinery", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data     []negotiation.Strategy `json:"data"`
		Fallback bool                   `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Fallback)
	require.Len(t, resp.Data, 3)
}

func TestDossierEndpoint(t *testing.T) {
	r := newRouter(t, &stubGenerator{err: negotiation.ErrNotConfigured})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/negotiation/dossier/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"supplierName":"Acme Industrial Supply"`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/negotiation/dossier/1", nil)
	req.Header.Set("Accept", "text/plain")
	plain := httptest.NewRecorder()
	r.ServeHTTP(plain, req)
	require.Equal(t, "text/plain; charset=utf-8", plain.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(plain.Body.String(), "NEGOTIATION DOSSIER: Acme Industrial Supply"))

	missing := httptest.NewRecorder()
	r.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/api/v1/negotiation/dossier/abc", nil))
	require.Equal(t, http.StatusNotFound, missing.Code)
}
