// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the background workers, closes realtime subscriptions and
// disconnects the document store.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Janitor != nil {
		deps.Janitor.Stop()
	}
	if deps.Watcher != nil {
		if err := deps.Watcher.Stop(); err != nil {
			logger.Warn("realtime watcher stopped with error", zap.Error(err))
		}
	}
	if deps.Hub != nil {
		deps.Hub.Close()
	}
	if deps.Store != nil {
		logger.Info("closing document store", zap.String("backend", deps.Store.Backend()))
		if err := deps.Store.Close(ctx); err != nil {
			logger.Error("document store close failed", zap.Error(err))
			return err
		}
	}
	return nil
}
