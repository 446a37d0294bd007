package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"account_service/internal/config"
	sl "account_service/internal/lib/logger"
	"account_service/internal/mailer"
	"account_service/internal/models"
	"account_service/internal/rabbitmq"
)

// mailerd drains the verification queue and delivers the mail over SMTP.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad("./config/config.yaml")
	log := sl.Setup(cfg.Env)

	log.Info("starting mailerd", slog.String("env", cfg.Env))

	broker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		return
	}
	defer broker.Close()

	deliveries, err := broker.Consume()
	if err != nil {
		log.Error("failed to start consumer", sl.Err(err))
		return
	}

	m := &mailer.Mailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("mailerd stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Info("delivery channel closed")
				return
			}

			var msg models.Message
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Error("failed to decode message", sl.Err(err))
				_ = d.Nack(false, false)
				continue
			}

			body := fmt.Sprintf("Follow the link to verify your email address: %s", msg.Link)

			if err := m.Send(msg.Email, "Verify your email", body); err != nil {
				log.Error("failed to send mail", sl.Err(err))
				_ = d.Nack(false, true)
				continue
			}

			log.Info("verification mail sent")
			_ = d.Ack(false)
		}
	}
}
