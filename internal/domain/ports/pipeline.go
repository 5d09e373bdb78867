package ports

import (
	"context"
	"time"

	"videoingest/internal/domain"
)

// ScheduleResult reports how Pipeline.Schedule handled a request.
type ScheduleResult string

const (
	ScheduleAccepted       ScheduleResult = "accepted"
	ScheduleAlreadyRunning ScheduleResult = "already_running"
	ScheduleTerminal       ScheduleResult = "terminal"
)

// Pipeline advances a Video through validation, analysis, and terminal
// classification on its own worker pool. Schedule is idempotent: a video
// already running or already terminal is a no-op.
type Pipeline interface {
	Schedule(ctx context.Context, id domain.VideoID) (ScheduleResult, error)
	Shutdown(deadline time.Duration)
}
