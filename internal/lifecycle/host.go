package lifecycle

import (
	"context"
	"time"

	"daily-report-go/internal/types"
)

// Host is the platform the form runs inside. It supplies the signed-in
// user, carries the finished report away and can dismiss the form.
type Host interface {
	GetUser() *types.Identity
	SendReport(ctx context.Context, r types.Report) error
	Close()
}

// Task is a scheduled callback that may still be cancelled.
type Task interface {
	// Cancel stops the callback; it reports false if it already ran.
	Cancel() bool
}

type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// TimerScheduler runs callbacks on time.AfterFunc goroutines.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) Task {
	return timerTask{time.AfterFunc(d, fn)}
}

type timerTask struct {
	t *time.Timer
}

func (t timerTask) Cancel() bool {
	return t.t.Stop()
}
