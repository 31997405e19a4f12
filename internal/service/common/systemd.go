//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/oshokin/bell-scheduler/internal/logger"
)

// NotifyReady tells systemd the service finished starting.
// Does nothing when not running under a notify unit.
func NotifyReady(ctx context.Context) {
	sdNotify(ctx, daemon.SdNotifyReady)
}

// NotifyStopping tells systemd the service is shutting down.
func NotifyStopping(ctx context.Context) {
	sdNotify(ctx, daemon.SdNotifyStopping)
}

// NotifyWatchdog pings the systemd watchdog.
func NotifyWatchdog(ctx context.Context) {
	sdNotify(ctx, daemon.SdNotifyWatchdog)
}

// WatchdogInterval returns how often the watchdog must be pinged, or zero when disabled.
// The interval is half the configured watchdog timeout.
func WatchdogInterval(ctx context.Context) time.Duration {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		logger.WarnKV(ctx, "Watchdog configuration is invalid", "error", err)
		return 0
	}

	return interval / 2
}

func sdNotify(ctx context.Context, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logger.WarnKV(ctx, "Systemd notification failed", "state", state, "error", err)
		return
	}

	if sent {
		logger.DebugKV(ctx, "Systemd notified", "state", state)
	}
}
