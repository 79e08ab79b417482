package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-procure/internal/compliance"
)

// TypeComplianceSweep is the asynq task type of the expiry sweep.
const TypeComplianceSweep = "compliance:sweep"

// QueueMaintenance holds periodic housekeeping tasks.
const QueueMaintenance = "maintenance"

// SweepPayload carries the expiry warning window in seconds.
type SweepPayload struct {
	WarningSeconds int64 `json:"warningSeconds"`
}

// NewComplianceSweepTask builds a sweep task. Overlapping sweeps are collapsed
// by the uniqueness window.
func NewComplianceSweepTask(warning time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(SweepPayload{WarningSeconds: int64(warning / time.Second)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeComplianceSweep, payload,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(3),
		asynq.Unique(10*time.Minute),
	), nil
}

// Sweeper runs an expiry sweep. *compliance.Service satisfies it.
type Sweeper interface {
	Sweep(ctx context.Context, warning time.Duration) (compliance.SweepResult, error)
}

// SweepHandler processes compliance sweep tasks.
type SweepHandler struct {
	Sweeper Sweeper
	Logger  zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h SweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p SweepPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode sweep payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.WarningSeconds < 0 {
		return fmt.Errorf("negative warning window: %w", asynq.SkipRetry)
	}
	started := time.Now()
	res, err := h.Sweeper.Sweep(ctx, time.Duration(p.WarningSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("compliance sweep: %w", err)
	}
	h.Logger.Info().
		Int("expired", res.Expired).
		Int("expiring", res.Expiring).
		Ints("suppliers", res.Suppliers).
		Dur("duration", time.Since(started)).
		Msg("compliance sweep finished")
	return nil
}

// NewMux routes every task type the worker understands.
func NewMux(sweep SweepHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeComplianceSweep, sweep)
	return mux
}

// RegisterSweep schedules the sweep on spec (cron syntax or "@every 1h").
func RegisterSweep(s *asynq.Scheduler, spec string, warning time.Duration) (string, error) {
	task, err := NewComplianceSweepTask(warning)
	if err != nil {
		return "", err
	}
	id, err := s.Register(spec, task)
	if err != nil {
		return "", fmt.Errorf("register compliance sweep %q: %w", spec, err)
	}
	return id, nil
}
