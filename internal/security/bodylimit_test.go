package security

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBodyLimitAllowsWithinLimit(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 10}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured = string(data)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("hello")))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "hello", captured)
}

func TestBodyLimitRejectsOversized(t *testing.T) {
	handler := BodyLimit{Max: 5}.Middleware(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("excessive")))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.Contains(t, rr.Body.String(), "PAYLOAD_TOO_LARGE")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("content"))
	req.ContentLength = 100
	declared := httptest.NewRecorder()
	handler.ServeHTTP(declared, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, declared.Code)
}

func multipartRequest(t *testing.T, size int) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cert.pdf")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compliance/analyze-document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = -1
	return req
}

func TestBodyLimitStreamsMultipart(t *testing.T) {
	var parseErr error
	handler := BodyLimit{Max: 16, Multipart: 1024}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parseErr = r.ParseMultipartForm(1 << 10)
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, 200))
	require.NoError(t, parseErr)

	handler.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, 4096))
	var tooLarge *http.MaxBytesError
	require.True(t, errors.As(parseErr, &tooLarge), "got %v", parseErr)
}
