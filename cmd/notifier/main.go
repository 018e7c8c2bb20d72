// Command notifier consumes queued OTP events and delivers them by SMS or
// email.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-blog-auth/internal/config"
	"github.com/go-blog-auth/internal/infrastructure/kafka"
	"github.com/go-blog-auth/internal/infrastructure/notify"
	"github.com/go-blog-auth/internal/infrastructure/smtp"
	"github.com/go-blog-auth/internal/infrastructure/sns"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := sns.NewSender(ctx, cfg)
	if err != nil {
		log.Fatalf("sns sender: %v", err)
	}
	direct := notify.NewDirect(sender, smtp.NewMailer(cfg))

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaOTPTopic, cfg.KafkaGroupID, direct)
	defer consumer.Close()

	log.Printf("Notifier consuming %s as %s", cfg.KafkaOTPTopic, cfg.KafkaGroupID)
	if err := consumer.Listen(ctx); err != nil {
		log.Fatalf("consumer: %v", err)
	}
	log.Println("Notifier stopped")
}
