// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/hotspot/internal/app/features/authgoogle"
	blogfeature "github.com/dalemusser/hotspot/internal/app/features/blog"
	connectionsfeature "github.com/dalemusser/hotspot/internal/app/features/connections"
	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	feedfeature "github.com/dalemusser/hotspot/internal/app/features/feed"
	forumsfeature "github.com/dalemusser/hotspot/internal/app/features/forums"
	groupsfeature "github.com/dalemusser/hotspot/internal/app/features/groups"
	healthfeature "github.com/dalemusser/hotspot/internal/app/features/health"
	loginfeature "github.com/dalemusser/hotspot/internal/app/features/login"
	logoutfeature "github.com/dalemusser/hotspot/internal/app/features/logout"
	mediafeature "github.com/dalemusser/hotspot/internal/app/features/media"
	notificationsfeature "github.com/dalemusser/hotspot/internal/app/features/notifications"
	realtimefeature "github.com/dalemusser/hotspot/internal/app/features/realtime"
	searchfeature "github.com/dalemusser/hotspot/internal/app/features/search"
	shopfeature "github.com/dalemusser/hotspot/internal/app/features/shop"
	userinfofeature "github.com/dalemusser/hotspot/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/hotspot/internal/app/features/users"
	blogstore "github.com/dalemusser/hotspot/internal/app/store/blog"
	cartstore "github.com/dalemusser/hotspot/internal/app/store/carts"
	connectionstore "github.com/dalemusser/hotspot/internal/app/store/connections"
	forumstore "github.com/dalemusser/hotspot/internal/app/store/forums"
	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	notificationstore "github.com/dalemusser/hotspot/internal/app/store/notifications"
	"github.com/dalemusser/hotspot/internal/app/store/oauthstate"
	productstore "github.com/dalemusser/hotspot/internal/app/store/products"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/search"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler once config, backends,
// schema and the background workers are in place.
//
// Every feature owns its router; BuildHandler builds the stores they share,
// applies the session middleware and mounts them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	return newRouter(appCfg, deps, sessionMgr, logger), nil
}

func newRouter(appCfg AppConfig, deps DBDeps, sessionMgr *auth.SessionManager, logger *zap.Logger) chi.Router {
	db := deps.Store.DB()

	users := userstore.New(db)
	groups := groupstore.New(db)

	r := chi.NewRouter()
	r.NotFound(httperrors.NotFound)
	r.MethodNotAllowed(httperrors.MethodNotAllowed)

	// Loads the SessionUser into context for anyone who is signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.Store, logger)))

	// Authentication
	r.Route("/auth", func(ar chi.Router) {
		loginHandler := loginfeature.NewHandler(users, sessionMgr, deps.LoginLimiter, logger)
		ar.Mount("/", loginfeature.Routes(loginHandler))
		ar.Mount("/logout", logoutfeature.Routes(logoutfeature.NewHandler(sessionMgr, logger)))
		ar.Mount("/me", userinfofeature.Routes(userinfofeature.NewHandler(users, logger), sessionMgr))

		if appCfg.GoogleClientID != "" {
			googleHandler := authgooglefeature.NewHandler(users, sessionMgr, oauthstate.New(db),
				appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
			ar.Mount("/google", authgooglefeature.Routes(googleHandler))
		}
	})

	// People
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(users, deps.Files, logger), sessionMgr))
	r.Mount("/media", mediafeature.Routes(mediafeature.NewHandler(deps.Files, logger), sessionMgr))
	r.Mount("/connections", connectionsfeature.Routes(
		connectionsfeature.NewHandler(connectionstore.New(db), users, logger), sessionMgr))
	r.Mount("/notifications", notificationsfeature.Routes(
		notificationsfeature.NewHandler(notificationstore.New(db), logger), sessionMgr))

	// Communities and content
	r.Mount("/groups", groupsfeature.Routes(groupsfeature.NewHandler(db, logger), sessionMgr))
	r.Mount("/forums", forumsfeature.Routes(forumsfeature.NewHandler(forumstore.New(db), logger), sessionMgr))
	r.Mount("/posts", feedfeature.Routes(feedfeature.NewHomeHandler(db, logger), sessionMgr))
	r.Mount("/blog", blogfeature.Routes(blogfeature.NewHandler(blogstore.New(db), logger), sessionMgr))

	// Shop
	shopHandler := shopfeature.NewHandler(productstore.New(db), cartstore.New(db), deps.Files, logger)
	r.Mount("/shop", shopfeature.Routes(shopHandler, sessionMgr))

	// Search and realtime
	searchHandler := searchfeature.NewHandler(search.NewForDB(db, logger), appCfg.SearchCap, logger)
	r.Mount("/search", searchfeature.Routes(searchHandler, sessionMgr))
	r.Mount("/realtime", realtimefeature.Routes(realtimefeature.NewHandler(deps.Hub, groups, logger), sessionMgr))

	return r
}
