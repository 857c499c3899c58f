package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tarasamar/internal/adapters/gotrue"
	server "tarasamar/internal/adapters/http_server"
	"tarasamar/internal/adapters/observability"
	redisad "tarasamar/internal/adapters/redis"
	"tarasamar/internal/adapters/session"
	"tarasamar/internal/app"
	"tarasamar/internal/catalog"
	"tarasamar/internal/domain"
	"tarasamar/internal/shared"
	"tarasamar/internal/storage/memory"
	mysqlrepo "tarasamar/internal/storage/mysql"
)

type store interface {
	domain.BookingRepository
	domain.ActivityLogRepository
	domain.NotificationRepository
}

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// stores
	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	// cache is optional; the services read through to the store without it
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, running without cache")
			_ = rc.Close()
		} else {
			cache = rc
			defer rc.Close()
		}
	}

	// identity
	verifier, provider := openIdentity(cfg)
	authz := app.AnyOf(app.NewAdminEmails(cfg.AdminEmails...), app.RoleIs(cfg.AdminRole))

	cat := catalog.MustLoad()
	identity := app.NewIdentityService(provider, st, authz)
	unsubscribe := identity.OnAuthChange(func(ev domain.AuthEvent) {
		log.Info().Str("kind", string(ev.Kind)).Str("email", ev.Email).Msg("auth state changed")
	})
	defer unsubscribe()

	// http
	srv := server.New(server.TrustProxyHeaders(cfg.TrustProxyHeaders))
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:              cat,
		Bookings:             app.NewBookingService(st, st, st, cat, authz, cache, cfg.CacheTTL),
		Queries:              app.NewQueryService(st, cache, cfg.CacheTTL),
		Notes:                app.NewNotificationService(st, cache, cfg.CacheTTL),
		Admin:                app.NewAdminService(st, st, authz),
		Identity:             identity,
		Tokens:               verifier,
		BookingRatePerMinute: cfg.BookingRatePerMinute,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.Storage).Bool("cache", cache != nil).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openStore(ctx context.Context, cfg shared.Config) (store, func()) {
	switch cfg.Storage {
	case shared.StorageMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.New(), func() {}
	case shared.StorageMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }
	default:
		log.Fatal().Str("storage", cfg.Storage).Msg("unknown STORAGE, want mysql or memory")
		return nil, nil
	}
}

// openIdentity uses the remote auth service when configured. Dev runs
// without one fall back to a local bcrypt provider.
func openIdentity(cfg shared.Config) (*session.Verifier, domain.IdentityProvider) {
	secret := cfg.AuthJWTSecret
	if secret == "" && cfg.Dev() {
		secret = uuid.NewString()
		log.Warn().Msg("AUTH_JWT_SECRET unset, using an ephemeral dev secret")
	}
	v, err := session.NewVerifier(secret)
	if err != nil {
		log.Fatal().Err(err).Msg("token verifier")
	}

	if cfg.AuthBase != "" {
		cl, err := gotrue.New(cfg.AuthBase, cfg.AuthKey, cfg.AuthRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("auth client")
		}
		return v, cl
	}
	if !cfg.Dev() {
		log.Fatal().Msg("AUTH_BASE_URL is required outside APP_ENV=dev")
	}
	roles := map[string]string{}
	if cfg.AdminRole != "" {
		for _, e := range cfg.AdminEmails {
			roles[e] = cfg.AdminRole
		}
	}
	log.Warn().Msg("using local identity provider")
	return v, session.NewLocalProvider(v, time.Hour, roles)
}
