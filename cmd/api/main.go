package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-blog-auth/internal/config"
	"github.com/go-blog-auth/internal/infrastructure/dynamo"
	"github.com/go-blog-auth/internal/infrastructure/google"
	jwtinfra "github.com/go-blog-auth/internal/infrastructure/jwt"
	"github.com/go-blog-auth/internal/infrastructure/kafka"
	"github.com/go-blog-auth/internal/infrastructure/notify"
	"github.com/go-blog-auth/internal/infrastructure/smtp"
	"github.com/go-blog-auth/internal/infrastructure/sns"
	"github.com/go-blog-auth/internal/infrastructure/sqlstore"
	"github.com/go-blog-auth/internal/pkg/cookie"
	transporthttp "github.com/go-blog-auth/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	setupLogger(cfg)
	ctx := context.Background()

	tokens, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}
	cookies, err := cookie.NewSigner([]byte(cfg.CookieHashKey), cfg.CookieSecure)
	if err != nil {
		log.Fatalf("cookie signer: %v", err)
	}

	deps := &transporthttp.Deps{
		Tokens:  tokens,
		Cookies: cookies,
		Google:  google.NewOAuth(cfg, google.NewVerifier(cfg.GoogleClientID)),
	}
	if err := wireStore(ctx, cfg, deps); err != nil {
		log.Fatalf("store: %v", err)
	}
	closeDispatcher, err := wireDispatcher(ctx, cfg, deps)
	if err != nil {
		log.Fatalf("dispatcher: %v", err)
	}
	defer closeDispatcher()

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, db=%s, notify=%s)", cfg.AppPort, cfg.AppEnv, cfg.DBDriver, cfg.NotifyTransport)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// wireStore picks the repositories named by DB_DRIVER.
func wireStore(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) error {
	if cfg.DBDriver == "dynamo" {
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		// Creates the tables if they don't exist.
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		deps.UserRepo = dynamo.NewUserRepo(client, cfg.DynamoTables.Users, cfg.DynamoTables.Identifiers)
		deps.OtpRepo = dynamo.NewOtpRepo(client, cfg.DynamoTables.Otps)
		deps.ProfileRepo = dynamo.NewProfileRepo(client, cfg.DynamoTables.Profiles)
		return nil
	}

	db, err := sqlstore.Open(cfg)
	if err != nil {
		return err
	}
	deps.UserRepo = sqlstore.NewUserRepo(db)
	deps.OtpRepo = sqlstore.NewOtpRepo(db)
	deps.ProfileRepo = sqlstore.NewProfileRepo(db)
	return nil
}

// wireDispatcher picks the OTP delivery path named by NOTIFY_TRANSPORT.
// Outside production nothing is sent, so no provider is contacted.
func wireDispatcher(ctx context.Context, cfg *config.Config, deps *transporthttp.Deps) (func(), error) {
	noop := func() {}
	if !cfg.IsProduction() {
		return noop, nil
	}
	if cfg.NotifyTransport == "kafka" {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOTPTopic)
		deps.Dispatcher = notify.NewQueued(producer)
		return func() {
			if err := producer.Close(); err != nil {
				log.Printf("kafka producer close: %v", err)
			}
		}, nil
	}

	sender, err := sns.NewSender(ctx, cfg)
	if err != nil {
		return noop, err
	}
	deps.Dispatcher = notify.NewDirect(sender, smtp.NewMailer(cfg))
	return noop, nil
}
