// @title        User Service API
// @version      1.0
// @description  User accounts with JWT cookie sessions and role-based access.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cardigital/user-service/internal/api"
	"github.com/cardigital/user-service/internal/core/ports"
	"github.com/cardigital/user-service/internal/core/service"
	"github.com/cardigital/user-service/internal/infrastructure/crypto"
	mongodb "github.com/cardigital/user-service/internal/infrastructure/db/mongo"
	redisdb "github.com/cardigital/user-service/internal/infrastructure/db/redis"
	"github.com/cardigital/user-service/internal/infrastructure/http/handlers"
	"github.com/cardigital/user-service/internal/pkg/config"
	"github.com/cardigital/user-service/pkg/logger"
)

const serviceName = "user-service"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load() // load .env if present

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.Mongo.AppName,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	// --- Infrastructure ---
	userRepo := mongodb.NewUserRepository(db, cfg.Mongo.Transactions)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	principalCache := redisdb.NewPrincipalCache(rdb, cfg.Redis.PrincipalTTL)
	hasher := crypto.NewBcryptHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL())

	// --- Core services ---
	authService := service.NewAuthService(userRepo, hasher, tokens, principalCache, log)
	authenticator := service.NewAuthenticator(userRepo, tokens, principalCache, log)
	userService := service.NewUserService(userRepo, userRepo, hasher, principalCache, log)

	if cfg.Admin.Enabled() {
		err := userService.EnsureAdmin(ctx, ports.CreateUserInput{
			Username:    cfg.Admin.Username,
			Password:    cfg.Admin.Password,
			FirstName:   cfg.Admin.FirstName,
			LastName:    cfg.Admin.LastName,
			Email:       cfg.Admin.Email,
			PhoneNumber: cfg.Admin.PhoneNumber,
		})
		if err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Dependencies{
		Logger:        log,
		AuthService:   authService,
		Authenticator: authenticator,
		UserService:   userService,
		HealthChecks:  []handlers.Check{handlers.MongoCheck(db), handlers.RedisCheck(rdb)},
		LoginRate:     cfg.LoginRate,
		LoginBurst:    cfg.LoginBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
