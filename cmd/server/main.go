// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	authhandler "vims/internal/auth/handler"
	authmetrics "vims/internal/auth/metrics"
	authservice "vims/internal/auth/service"
	sessionstore "vims/internal/auth/store/session"
	userstore "vims/internal/auth/store/user"
	"vims/internal/insurance"
	inshandler "vims/internal/insurance/handler"
	insmetrics "vims/internal/insurance/metrics"
	insservice "vims/internal/insurance/service"
	insmemory "vims/internal/insurance/store/memory"
	inspostgres "vims/internal/insurance/store/postgres"
	jwttoken "vims/internal/jwt_token"
	"vims/internal/news"
	newshandler "vims/internal/news/handler"
	"vims/internal/platform/config"
	"vims/internal/platform/httpserver"
	"vims/internal/platform/logger"
	"vims/internal/platform/postgres"
	"vims/internal/platform/redis"
	httptransport "vims/internal/transport/http"
	audit "vims/pkg/platform/audit"
	auditpublisher "vims/pkg/platform/audit/publisher"
	auditkafka "vims/pkg/platform/audit/publishers/kafka"
	auditmemory "vims/pkg/platform/audit/store/memory"
	auditpostgres "vims/pkg/platform/audit/store/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: PostgreSQL when a DSN is configured, in-memory otherwise.
	var (
		users      authservice.UserStore
		insStore   insurance.Store
		auditStore audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgres(db)
		insStore = inspostgres.New(db)
		auditStore = auditpostgres.New(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		users = userstore.New()
		insStore = insmemory.New()
		auditStore = auditmemory.NewInMemoryStore()
	}

	// Sessions: Redis when configured, in-memory otherwise.
	var sessions authservice.SessionStore
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionstore.NewRedis(redisClient.Client)
	} else {
		sessions = sessionstore.New()
	}

	// Audit trail: persisted to the store, optionally mirrored to Kafka.
	auditOpts := []auditpublisher.Option{
		auditpublisher.WithLogger(log),
		auditpublisher.WithAsyncBuffer(256),
	}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka audit sink init failed", "error", err)
			os.Exit(1)
		}
		auditOpts = append(auditOpts, auditpublisher.WithSink(sink))
	}
	auditor := auditpublisher.NewPublisher(auditStore, auditOpts...)
	defer auditor.Close()

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "vims")
	authSvc := authservice.NewService(users, sessions, tokens, auditor, authmetrics.New(), config.SessionTTL)
	insSvc := insservice.NewService(insStore, auditor, insmetrics.New(), log)

	var fetcher news.Fetcher
	if cfg.NewsAPIKey != "" {
		fetcher = news.NewClient(cfg.NewsAPIKey)
	} else {
		log.Warn("NEWS_API_KEY not set, news feed disabled")
	}
	newsSvc := news.NewService(fetcher, config.NewsCacheTTL, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:      authhandler.New(authSvc, log),
		Insurance: inshandler.New(insSvc, log),
		News:      newshandler.New(newsSvc),
		Validator: tokens,
		Sessions:  authSvc,
		Logger:    log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vims server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
