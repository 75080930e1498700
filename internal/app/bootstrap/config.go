// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/hotspot/internal/app/system/docstore"
	"github.com/dalemusser/hotspot/internal/app/system/search"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for HotSpoT.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: HOTSPOT_MONGO_URI, HOTSPOT_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: "mongo", Desc: "Document store backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "hotspot", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "mongo_connect_timeout", Default: "10s", Desc: "MongoDB connect timeout"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "hotspot-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_endpoint", Default: "", Desc: "S3-compatible endpoint (host:port)"},
	{Name: "storage_bucket", Default: "hotspot", Desc: "S3 bucket name"},
	{Name: "storage_access_key", Default: "", Desc: "S3 access key"},
	{Name: "storage_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_use_ssl", Default: true, Desc: "Use TLS for the S3 endpoint"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID (blank disables Google sign-in)"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL, used for OAuth callbacks"},

	// Search and realtime
	{Name: "search_cap", Default: search.DefaultCap, Desc: "Default hits per kind for universal search"},
	{Name: "realtime_buffer", Default: 64, Desc: "Events buffered per realtime subscription"},

	// Background sweeps
	{Name: "janitor_interval", Default: "1h", Desc: "How often expired rows are swept"},
	{Name: "notification_retention", Default: "720h", Desc: "Read notifications older than this are pruned"},

	// Store timeouts
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document store calls"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for multi-document store calls"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for bulk store calls"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (WAFFLE_* for core, HOTSPOT_* for app) and flags
// with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HOTSPOT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend:        strings.ToLower(appValues.String("store_backend")),
		MongoURI:            appValues.String("mongo_uri"),
		MongoDatabase:       appValues.String("mongo_database"),
		MongoMaxPoolSize:    uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize:    uint64(appValues.Int("mongo_min_pool_size")),
		MongoConnectTimeout: appValues.Duration("mongo_connect_timeout", 10*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		// File storage
		StorageType:      strings.ToLower(appValues.String("storage_type")),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageEndpoint:  appValues.String("storage_endpoint"),
		StorageBucket:    appValues.String("storage_bucket"),
		StorageAccessKey: appValues.String("storage_access_key"),
		StorageSecretKey: appValues.String("storage_secret_key"),
		StorageUseSSL:    appValues.Bool("storage_use_ssl"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		BaseURL:            strings.TrimRight(appValues.String("base_url"), "/"),

		SearchCap:      appValues.Int("search_cap"),
		RealtimeBuffer: appValues.Int("realtime_buffer"),

		JanitorInterval:       appValues.Duration("janitor_interval", time.Hour),
		NotificationRetention: appValues.Duration("notification_retention", 30*24*time.Hour),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI is checked before connecting so a typo fails fast. The
// memory backend needs no URI.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case docstore.BackendMongo, "":
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case docstore.BackendMemory:
		if coreCfg != nil && coreCfg.Env == "prod" {
			logger.Warn("memory store backend in production; data will not survive a restart")
		}
	default:
		return fmt.Errorf("store_backend must be 'mongo' or 'memory', got %q", appCfg.StoreBackend)
	}

	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}

	switch appCfg.StorageType {
	case "", "local":
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			return fmt.Errorf("storage_local_path is required for local storage")
		}
	case "s3", "minio":
		if appCfg.StorageEndpoint == "" || appCfg.StorageBucket == "" {
			return fmt.Errorf("storage_endpoint and storage_bucket are required for s3 storage")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}

	if appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret == "" {
		return fmt.Errorf("google_client_secret is required when google_client_id is set")
	}
	if appCfg.SearchCap < 0 || appCfg.SearchCap > search.MaxCap {
		return fmt.Errorf("search_cap must be between 0 and %d", search.MaxCap)
	}
	if appCfg.RealtimeBuffer < 1 {
		return fmt.Errorf("realtime_buffer must be at least 1")
	}
	return nil
}
