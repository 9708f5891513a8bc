package usecase

import (
	"context"
	"fmt"

	drepo "TradeBot365/internal/domain/repository"
	applogger "TradeBot365/pkg/logger"
	"TradeBot365/pkg/queue"
)

// TypeErrorResolve is the queue message type for error resolutions.
const TypeErrorResolve = "error.resolve"

// ResolvePayload is the queued resolution request.
type ResolvePayload struct {
	SignalID string `json:"signal_id"`
	Note     string `json:"note"`
}

// ResolveJob drains queued resolutions and publishes them to the event bus
// so the upstream processor can close the error.
type ResolveJob struct {
	pub drepo.Publisher
	l   *applogger.Logger
}

func NewResolveJob(pub drepo.Publisher, l *applogger.Logger) *ResolveJob {
	return &ResolveJob{pub: pub, l: l}
}

func (j *ResolveJob) Name() string { return "error-resolve" }

func (j *ResolveJob) Type() string { return TypeErrorResolve }

func (j *ResolveJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[ResolvePayload](payload)
	if err != nil {
		return fmt.Errorf("resolve payload: %w", err)
	}
	if p.SignalID == "" {
		return fmt.Errorf("resolve payload missing signal id")
	}
	if err := j.pub.PublishResolution(ctx, p.SignalID, p.Note); err != nil {
		if j.l != nil {
			j.l.Error("resolve publish failed",
				applogger.String("signal_id", p.SignalID), applogger.Error(err))
		}
		return err
	}
	if j.l != nil {
		j.l.Info("error resolved", applogger.String("signal_id", p.SignalID))
	}
	return nil
}

var _ queue.Job = (*ResolveJob)(nil)
