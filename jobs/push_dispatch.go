package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/societydesk/societydesk/internal/notify"
)

// PushDispatchJob executes queued push fan-outs on the worker.
type PushDispatchJob struct {
	Fanout *notify.Fanout
	Logger *slog.Logger
}

// NewPushDispatchJob initialises the push dispatch handler.
func NewPushDispatchJob(fanout *notify.Fanout, logger *slog.Logger) *PushDispatchJob {
	return &PushDispatchJob{Fanout: fanout, Logger: logger}
}

// Handle processes TaskTypePushDispatch tasks.
func (j *PushDispatchJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Fanout == nil {
		return errors.New("push dispatch: handler not configured")
	}
	var payload PushDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.Fanout.Send(ctx, payload.Payload, payload.Tokens, payload.Recipients); err != nil {
		if j.Logger != nil {
			j.Logger.Error("push dispatch failed",
				slog.String("event", payload.Payload.Event),
				slog.Any("error", err),
			)
		}
		return err
	}
	return nil
}
