// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/hotspot/internal/app/system/docstore"
	"github.com/dalemusser/hotspot/internal/app/system/ratelimit"
	"github.com/dalemusser/hotspot/internal/app/system/realtime"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/hotspot/internal/app/system/workers"
)

// DBDeps holds the backends the app runs on. The watcher and janitor are
// built by ConnectDB and started by Startup.
type DBDeps struct {
	Store *docstore.Store
	Files storage.Store

	Hub     *realtime.Hub
	Watcher *realtime.Watcher
	Janitor *workers.Janitor

	// Shared by the sign-in routes and swept by the janitor.
	LoginLimiter *ratelimit.LoginLimiter
}
