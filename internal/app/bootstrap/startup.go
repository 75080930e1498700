// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/256dpi/lungo"
	notificationstore "github.com/dalemusser/hotspot/internal/app/store/notifications"
	"github.com/dalemusser/hotspot/internal/app/store/oauthstate"
	"github.com/dalemusser/hotspot/internal/app/system/ratelimit"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// watcherReadyWait bounds how long Startup waits for the change stream to
// open before serving anyway.
const watcherReadyWait = 5 * time.Second

// Startup applies store timeouts and starts the background workers: the
// realtime change-stream watcher and the janitor.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	deps.Watcher.Start()
	select {
	case <-deps.Watcher.Ready():
	case <-time.After(watcherReadyWait):
		logger.Warn("realtime watcher not ready yet; continuing", zap.Duration("waited", watcherReadyWait))
	case <-ctx.Done():
		return ctx.Err()
	}

	deps.Janitor.Start()
	return nil
}

// newJanitor registers the periodic sweeps: expired OAuth states, read
// notifications past the retention window and stale sign-in counters.
func newJanitor(db lungo.IDatabase, limiter *ratelimit.LoginLimiter, appCfg AppConfig, logger *zap.Logger) *workers.Janitor {
	states := oauthstate.New(db)
	notes := notificationstore.New(db)
	retention := appCfg.NotificationRetention

	return workers.NewJanitor(logger, appCfg.JanitorInterval).
		Add("oauth_states", workers.SweepFunc(func(ctx context.Context, _ time.Time) (int64, error) {
			return states.CleanupExpired(ctx)
		})).
		Add("read_notifications", workers.SweepFunc(func(ctx context.Context, now time.Time) (int64, error) {
			return notes.PruneRead(ctx, now.Add(-retention))
		})).
		Add("login_limits", limiter)
}
