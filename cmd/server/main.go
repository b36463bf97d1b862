// Command server wires the CRM backend: config, storage, auth, the
// session-scoped fetchers and the HTTP transport. Business logic lives in the
// internal service packages; main only assembles them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"

	authhandler "confcrm/internal/auth/handler"
	authservice "confcrm/internal/auth/service"
	authstore "confcrm/internal/auth/store"
	"confcrm/internal/auth/store/revocation"
	"confcrm/internal/auth/store/session"
	"confcrm/internal/auth/store/user"
	"confcrm/internal/auth/token"
	"confcrm/internal/changefeed"
	"confcrm/internal/crm/fetcher"
	crmhandler "confcrm/internal/crm/handler"
	crmservice "confcrm/internal/crm/service"
	"confcrm/internal/crm/store"
	"confcrm/internal/crm/store/memory"
	crmpostgres "confcrm/internal/crm/store/postgres"
	"confcrm/internal/enrichment"
	enrichhandler "confcrm/internal/enrichment/handler"
	"confcrm/internal/platform/config"
	"confcrm/internal/platform/httpserver"
	"confcrm/internal/platform/logger"
	"confcrm/internal/platform/metrics"
	"confcrm/internal/platform/postgres"
	platformredis "confcrm/internal/platform/redis"
	httptransport "confcrm/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	tracer := otel.Tracer("confcrm")

	var checks []httptransport.HealthCheck

	// Storage. Without DATABASE_URL everything runs in memory, which is enough
	// for local development against the API.
	var (
		stores      store.Stores
		users       authstore.UserStore
		revocations authstore.RevocationList
	)
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal(log, "postgres connection failed", err)
		}
		defer pool.Close()

		// The revocation store predates the pgx migration and still speaks
		// database/sql.
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			fatal(log, "postgres connection failed", err)
		}
		defer db.Close()

		stores = crmpostgres.NewStores(pool)
		users = user.NewPostgres(pool)
		revocations = revocation.NewPostgres(db)
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: pool.Ping})
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		stores = memory.NewStore().Stores()
		users = user.NewMemory()
		revocations = revocation.NewMemory()
	}

	rc, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		fatal(log, "redis connection failed", err)
	}
	var sessions authstore.SessionStore
	if rc != nil {
		defer rc.Close()
		sessions = session.NewRedis(rc.Client)
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: rc.Health})
	} else {
		log.Warn("REDIS_URL not set, sessions are in-memory")
		sessions = session.NewMemory()
	}

	feed, err := changefeed.New(ctx, cfg.KafkaBrokers, changefeed.DefaultTopic, log)
	if err != nil {
		// The changefeed is best-effort; the API works without it.
		log.Warn("changefeed disabled", "error", err)
		feed = nil
	}
	if feed != nil {
		defer feed.Close(context.Background())
	}

	tokens := token.NewService(cfg.JWTSigningKey, "confcrm", "confcrm-api")
	validator := token.NewValidator(tokens, revocations)
	authSvc := authservice.New(users, sessions, revocations, tokens, log,
		authservice.WithSessionTTL(cfg.SessionTTL))
	checker := authservice.NewSessionChecker(sessions, time.Now)

	crmSvc := crmservice.New(stores, log,
		crmservice.WithChangefeed(feed),
		crmservice.WithMetrics(m))

	registry := fetcher.NewRegistry(func() *fetcher.Fetcher {
		return fetcher.New(stores, checker,
			fetcher.WithDebounce(cfg.FetchDebounce),
			fetcher.WithPageSize(cfg.DefaultPageSize),
			fetcher.WithLogger(log),
			fetcher.WithMetrics(m),
			fetcher.WithTracer(tracer))
	})

	enrichSvc := enrichment.New(
		enrichment.NewHTTPContactClient(cfg.ContactAPIURL, cfg.ContactAPIKey),
		enrichment.NewHTTPOrganizationClient(cfg.OrgAPIURL, cfg.OrgAPIKey),
		enrichment.NewHTTPAIClient(cfg.AIAPIURL, cfg.AIAPIKey),
		stores.Attendees, stores.HealthSystems, log,
		enrichment.WithMetrics(m),
		enrichment.WithTracer(tracer))

	router := httptransport.NewRouter(log, checks,
		authhandler.New(authSvc, registry, log, m, validator),
		crmhandler.New(crmSvc, registry, log, m, validator),
		enrichhandler.New(enrichSvc, registry, log, m, validator))

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting confcrm", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fatal(log, "graceful shutdown failed", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
