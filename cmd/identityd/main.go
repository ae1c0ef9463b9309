package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/workflo/identity/config"
	"github.com/workflo/identity/internal/application"
	pginfra "github.com/workflo/identity/internal/infrastructure/postgres"
	handlers "github.com/workflo/identity/internal/interface/http"
	"github.com/workflo/identity/internal/interface/middleware"
	"github.com/workflo/identity/internal/oauth"
	"github.com/workflo/identity/internal/router"
	"github.com/workflo/identity/internal/token"
	"github.com/workflo/identity/pkg/breach"
	"github.com/workflo/identity/pkg/hashing"
	"github.com/workflo/identity/pkg/helpers"
	"github.com/workflo/identity/pkg/mailer"
	"github.com/workflo/identity/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife, cfg.DBPingTimeout)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer pub.Close()

	// Leaf services
	hasher := hashing.New(cfg.EmailHashKey)
	breachChecker := breach.NewClient(cfg.BreachAPIBaseURL, cfg.BreachTimeout)
	tokens := token.NewService(
		cfg.JWTAccessSecret, cfg.JWTRefreshSecret,
		cfg.AccessTTL, cfg.RefreshTTL, cfg.RememberMeTTL,
		token.NewRedisRevocationStore(rdb),
	)
	verifyTokens := token.NewVerificationService(token.NewRedisVerificationStore(rdb), cfg.VerifyTokenTTL)
	emailSender := mailer.NewQueueSender(pub, cfg.VerifyEmailURL, cfg.VerifyTokenTTL)

	// Provider adapters are wired here and injected; nothing registers
	// itself globally.
	providers := oauth.NewRegistry(
		oauth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL),
		oauth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.OAuthRedirectURL),
	)

	repo := pginfra.NewUserRepository(pool)
	service := application.NewService(repo, hasher, breachChecker, tokens, verifyTokens, emailSender, providers, logger)
	handler := handlers.NewAuthHandler(service, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	reg.Add(router.NewIdentityModule(handler, tokens))
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("identity server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
