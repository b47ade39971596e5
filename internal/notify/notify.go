package notify

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

// Notifier delivers user-visible alerts. Implementations must never block the
// caller and must swallow delivery failures.
type Notifier interface {
	Notify(title, body string)
}

// Desktop sends OS notifications through the system notification service.
type Desktop struct {
	log *zap.SugaredLogger
}

// NewDesktop creates a desktop notifier.
func NewDesktop(log *zap.SugaredLogger) *Desktop {
	return &Desktop{log: log}
}

// Notify dispatches the alert on a goroutine. A failed dispatch (missing
// notification daemon, denied permission) is logged and dropped.
func (d *Desktop) Notify(title, body string) {
	go func() {
		if err := beeep.Notify(title, body, ""); err != nil {
			d.log.Warnw("notification dispatch failed", "title", title, "error", err)
		}
	}()
}

// Noop discards all notifications. Used in tests and --no-notify runs.
type Noop struct{}

func (Noop) Notify(string, string) {}
