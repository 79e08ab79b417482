package negotiation_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/common"
	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/negotiation"
	"github.com/noah-isme/backend-procure/internal/obs"
	"github.com/noah-isme/backend-procure/internal/resilience"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type stubGenerator struct {
	msg        negotiation.Message
	strategies []negotiation.Strategy
	err        error
	lastReq    negotiation.MessageRequest
}

func (g *stubGenerator) GenerateMessage(_ context.Context, req negotiation.MessageRequest) (negotiation.Message, error) {
	g.lastReq = req
	return g.msg, g.err
}

func (g *stubGenerator) FetchStrategies(context.Context, negotiation.StrategyQuery) ([]negotiation.Strategy, error) {
	return g.strategies, g.err
}

func newService(t *testing.T, gen negotiation.Generator) *negotiation.Service {
	t.Helper()
	obs.MustRegisterDomainMetrics("procure_test", prometheus.NewRegistry())
	sup, err := supplier.NewService(supplier.ServiceConfig{Store: supplier.NewMemoryStore(supplier.Fixtures()...)})
	require.NoError(t, err)
	comp, err := compliance.NewService(compliance.ServiceConfig{
		Store:     compliance.NewMemoryStore(compliance.FixtureItems(fixedNow)...),
		Suppliers: sup,
		Now:       func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	svc, err := negotiation.NewService(negotiation.ServiceConfig{
		Generator:  gen,
		Suppliers:  sup,
		Compliance: comp,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func counter(kind, result string) float64 {
	return testutil.ToFloat64(obs.NegotiationRequestsTotal.WithLabelValues(kind, result))
}

func TestMessageUsesGenerator(t *testing.T) {
	gen := &stubGenerator{msg: negotiation.Message{Subject: "s", Body: "b", SuggestedTone: "firm", KeyPoints: []string{}}}
	svc := newService(t, gen)
	before := counter("message", "ok")

	msg, err := svc.Message(context.Background(), negotiation.MessageRequest{Type: "initial", SupplierID: 1})
	require.NoError(t, err)
	require.False(t, msg.Fallback)
	require.Equal(t, "Acme Industrial Supply", gen.lastReq.Supplier)
	require.Equal(t, before+1, counter("message", "ok"))
}

func TestMessageFallsBackOnGeneratorFailure(t *testing.T) {
	svc := newService(t, &stubGenerator{err: errors.New("connection refused")})
	before := counter("message", "fallback")

	req := negotiation.MessageRequest{
		Type:              negotiation.KindCounter,
		Supplier:          "Green Packaging Co",
		AdditionalContext: "Volumes double next quarter.",
		KeyPoints:         []string{"Unit price", " ", "Lead time"},
	}
	msg, err := svc.Message(context.Background(), req)
	require.NoError(t, err)
	require.True(t, msg.Fallback)
	require.Equal(t, "Re: Proposal revision for Green Packaging Co", msg.Subject)
	require.Equal(t, "collaborative", msg.SuggestedTone)
	require.Equal(t, []string{"Unit price", "Lead time"}, msg.KeyPoints)
	require.Contains(t, msg.Body, "Dear Green Packaging Co team,")
	require.Contains(t, msg.Body, "Volumes double next quarter.")
	require.Contains(t, msg.Body, "- Lead time")
	require.Equal(t, before+1, counter("message", "fallback"))

	again, err := svc.Message(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, msg, again)
}

func TestMessageFallbackForOpenCircuit(t *testing.T) {
	svc := newService(t, &stubGenerator{err: resilience.ErrOpenCircuit})
	before := counter("message", "circuit_open")
	msg, err := svc.Message(context.Background(), negotiation.MessageRequest{Type: "whatever", Supplier: "Acme"})
	require.NoError(t, err)
	require.True(t, msg.Fallback)
	require.Equal(t, "Regarding our business with Acme", msg.Subject)
	require.Equal(t, []string{"Pricing", "Delivery schedule", "Payment terms"}, msg.KeyPoints)
	require.Equal(t, before+1, counter("message", "circuit_open"))
}

func TestMessageValidation(t *testing.T) {
	svc := newService(t, &stubGenerator{})
	_, err := svc.Message(context.Background(), negotiation.MessageRequest{})
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	details := appErr.Details.(map[string]string)
	require.Contains(t, details, "type")
	require.Contains(t, details, "supplier")

	_, err = svc.Message(context.Background(), negotiation.MessageRequest{Type: "initial", SupplierID: 42})
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestStrategiesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	client := negotiation.Client{
		HTTP:        resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
		StrategyURL: srv.URL,
	}
	svc := newService(t, client)

	res := svc.Strategies(context.Background(), negotiation.StrategyQuery{Supplier: "Acme"})
	require.True(t, res.Fallback)
	titles := make([]string, 0, len(res.Items))
	for _, s := range res.Items {
		titles = append(titles, s.Title)
	}
	require.Equal(t, []string{"Volume Discount", "Early Payment Terms", "Long-term Contract"}, titles)
}

func TestStrategiesFromGenerator(t *testing.T) {
	svc := newService(t, &stubGenerator{strategies: []negotiation.Strategy{{Title: "Consignment stock"}}})
	res := svc.Strategies(context.Background(), negotiation.StrategyQuery{})
	require.False(t, res.Fallback)
	require.Len(t, res.Items, 1)
}

func TestDossier(t *testing.T) {
	svc := newService(t, &stubGenerator{err: negotiation.ErrNotConfigured})
	d, err := svc.Dossier(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, "Precision Metals Inc", d.SupplierName)
	require.Equal(t, supplier.ComplianceNonCompliant, d.Compliance)
	require.Equal(t, fixedNow, d.GeneratedAt)
	require.Len(t, d.Strategies, 3)
	for _, want := range []string{
		"NEGOTIATION DOSSIER: Precision Metals Inc",
		"Generated 2024-06-01",
		"COMPLIANCE: NON-COMPLIANT",
		"- Missing: Material traceability audit",
		"- Steel Beams: 15.00 per unit, MOQ 10, lead time 5 weeks",
		"[HIGH] Compliance: Quality certificate lapsed",
		"- Volume Discount (5-15%, high confidence)",
	} {
		require.Contains(t, d.Report, want)
	}
	require.False(t, strings.Contains(d.Report, "<no value>"))

	_, err = svc.Dossier(context.Background(), 99)
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}
