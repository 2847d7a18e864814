// @title           Task Manager API
// @version         1.0
// @description     Accounts, projects and tasks behind bearer-token authentication.
// @host            localhost:3001
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/sirpyerre/task-manager/internal/api"
	"github.com/sirpyerre/task-manager/internal/api/handler"
	"github.com/sirpyerre/task-manager/internal/core/service"
	"github.com/sirpyerre/task-manager/internal/infrastructure/db/mongo"
	"github.com/sirpyerre/task-manager/internal/infrastructure/db/redis"
	"github.com/sirpyerre/task-manager/internal/infrastructure/db/sqlstore"
	"github.com/sirpyerre/task-manager/internal/infrastructure/queue"
	"github.com/sirpyerre/task-manager/internal/infrastructure/security"
	"github.com/sirpyerre/task-manager/internal/pkg/config"
	"github.com/sirpyerre/task-manager/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-manager",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN})
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("driver", store.Driver()).Msg("sql store ready")

	tokens, err := security.NewJWTService(security.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.JWTTTL,
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		return err
	}

	health := map[string]handler.DependencyCheck{"sql": store.Ping}
	authOpts := []service.AuthOption{service.WithDistinctLoginErrors(cfg.Auth.DistinctLoginErrors)}

	var dispatcher *queue.Dispatcher
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer disconnectMongo(client)

		audit := mongo.NewAuditRepository(db)
		if err := audit.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("ensure audit indexes")
		}
		dispatcher = queue.NewDispatcher(cfg.Mongo.Workers, audit, log)
		dispatcher.Start(context.WithoutCancel(ctx))
		authOpts = append(authOpts, service.WithAuditRecorder(dispatcher))
		health["mongodb"] = func(ctx context.Context) error { return mongo.Ping(ctx, client) }
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.Mongo.Workers).Msg("audit trail enabled")
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer closeRedis(rdb)

		throttle := redis.NewLoginThrottle(rdb, cfg.Auth.MaxFailedLogins, cfg.Auth.FailedLoginWindow)
		authOpts = append(authOpts, service.WithLoginThrottle(throttle))
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Int("max_failures", cfg.Auth.MaxFailedLogins).Dur("window", cfg.Auth.FailedLoginWindow).Msg("login throttle enabled")
	}

	users := sqlstore.NewUserRepository(store)
	e, err := api.NewRouter(api.Dependencies{
		Auth: service.NewAuthService(
			users,
			security.NewBcryptHasher(cfg.Auth.BcryptCost),
			tokens,
			log,
			authOpts...,
		),
		Projects: service.NewProjectService(sqlstore.NewProjectRepository(store), users, log),
		Tasks:    service.NewTaskService(sqlstore.NewTaskRepository(store), users, log),
		Tokens:   tokens,
		Health:   health,
		Log:      log,
	})
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		serveErr <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}

	if dispatcher != nil {
		dispatcher.Close()
		dispatcher.Wait()
		log.Info().Msg("audit queue drained")
	}
	return nil
}

func disconnectMongo(client *mongodriver.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Msg("mongo disconnect")
	}
}

func closeRedis(client *goredis.Client) {
	if err := client.Close(); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Msg("redis close")
	}
}
