// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds HotSpoT-specific configuration.
//
// Values come from config files, HOTSPOT_* environment variables, or flags
// (loaded in LoadConfig). WAFFLE's CoreConfig covers the framework side:
// ports, TLS, logging, CORS and body limits.
type AppConfig struct {
	// Document store
	StoreBackend        string // "mongo" or "memory"
	MongoURI            string // e.g. mongodb://localhost:27017
	MongoDatabase       string
	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64
	MongoConnectTimeout time.Duration

	// Sessions
	SessionKey    string // must be strong in production
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// File storage for avatars and product images
	StorageType      string // "local" or "s3"
	StorageLocalPath string
	StorageEndpoint  string // S3-compatible endpoint, host:port
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string
	StorageUseSSL    bool

	// Google OAuth; sign-in with Google is disabled when the client ID is blank.
	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string // used to build the OAuth callback URL

	// Search and realtime
	SearchCap      int // hits per kind when the request gives no cap
	RealtimeBuffer int // events buffered per subscription before it is dropped

	// Background sweeps
	JanitorInterval       time.Duration
	NotificationRetention time.Duration // read notifications older than this are pruned

	// Store timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
