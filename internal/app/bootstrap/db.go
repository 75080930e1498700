// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/hotspot/internal/app/system/docstore"
	"github.com/dalemusser/hotspot/internal/app/system/indexes"
	"github.com/dalemusser/hotspot/internal/app/system/ratelimit"
	"github.com/dalemusser/hotspot/internal/app/system/realtime"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB opens the document store and file storage and builds, without
// starting, the realtime watcher and the janitor.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	st, err := docstore.Open(ctx, docstore.Config{
		Backend:        appCfg.StoreBackend,
		URI:            appCfg.MongoURI,
		Database:       appCfg.MongoDatabase,
		MaxPoolSize:    appCfg.MongoMaxPoolSize,
		MinPoolSize:    appCfg.MongoMinPoolSize,
		ConnectTimeout: appCfg.MongoConnectTimeout,
	}, logger)
	if err != nil {
		return DBDeps{}, err
	}

	files, err := storage.Open(ctx, storage.Config{
		Backend:   appCfg.StorageType,
		LocalDir:  appCfg.StorageLocalPath,
		Endpoint:  appCfg.StorageEndpoint,
		AccessKey: appCfg.StorageAccessKey,
		SecretKey: appCfg.StorageSecretKey,
		Bucket:    appCfg.StorageBucket,
		UseSSL:    appCfg.StorageUseSSL,
	})
	if err != nil {
		_ = st.Close(context.Background())
		return DBDeps{}, fmt.Errorf("open file storage: %w", err)
	}
	logger.Info("file storage ready", zap.String("type", appCfg.StorageType))

	deps := DBDeps{Store: st, Files: files}
	deps.Hub = realtime.NewHub(appCfg.RealtimeBuffer)
	deps.Watcher = realtime.NewWatcher(st.DB(), deps.Hub, logger.Named("realtime"))
	deps.LoginLimiter = ratelimit.NewLoginLimiter()
	deps.Janitor = newJanitor(st.DB(), deps.LoginLimiter, appCfg, logger.Named("janitor"))
	return deps, nil
}

// EnsureSchema creates the indexes every store relies on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.Store.DB()); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
