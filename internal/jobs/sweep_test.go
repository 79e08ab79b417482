package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-procure/internal/compliance"
	"github.com/noah-isme/backend-procure/internal/supplier"
)

type recordingSweeper struct {
	warning time.Duration
	err     error
}

func (r *recordingSweeper) Sweep(_ context.Context, warning time.Duration) (compliance.SweepResult, error) {
	r.warning = warning
	return compliance.SweepResult{Expired: 1}, r.err
}

func TestSweepTaskCarriesWarning(t *testing.T) {
	task, err := NewComplianceSweepTask(72 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, TypeComplianceSweep, task.Type())

	sw := &recordingSweeper{}
	require.NoError(t, SweepHandler{Sweeper: sw}.ProcessTask(context.Background(), task))
	require.Equal(t, 72*time.Hour, sw.warning)
}

func TestSweepHandlerErrors(t *testing.T) {
	bad := asynq.NewTask(TypeComplianceSweep, []byte("{"))
	err := SweepHandler{Sweeper: &recordingSweeper{}}.ProcessTask(context.Background(), bad)
	require.ErrorIs(t, err, asynq.SkipRetry)

	task, err := NewComplianceSweepTask(time.Hour)
	require.NoError(t, err)
	err = SweepHandler{Sweeper: &recordingSweeper{err: errors.New("db down")}}.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestMuxRunsSweepAgainstService(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sup, err := supplier.NewService(supplier.ServiceConfig{Store: supplier.NewMemoryStore(supplier.Fixtures()...)})
	require.NoError(t, err)
	past := now.Add(-time.Hour)
	store := compliance.NewMemoryStore(compliance.Item{ID: "a", SupplierID: 5, Status: compliance.StatusCompliant, ExpiresAt: &past})
	svc, err := compliance.NewService(compliance.ServiceConfig{Store: store, Suppliers: sup, Now: func() time.Time { return now }})
	require.NoError(t, err)

	task, err := NewComplianceSweepTask(0)
	require.NoError(t, err)
	require.NoError(t, NewMux(SweepHandler{Sweeper: svc}).ProcessTask(context.Background(), task))

	s, err := sup.Get(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, supplier.ComplianceNonCompliant, s.ComplianceStatus)
}

func TestLoggerSatisfiesAsynq(t *testing.T) {
	var buf bytes.Buffer
	var l asynq.Logger = Logger{L: zerolog.New(&buf)}
	l.Warn("scheduler ", "lagging")
	require.Contains(t, buf.String(), `"message":"scheduler lagging"`)
}
