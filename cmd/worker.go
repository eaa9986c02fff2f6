/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oshawa-skills/apiserver/config"
	"github.com/oshawa-skills/apiserver/internal/logger"
	"github.com/oshawa-skills/apiserver/internal/mq"
	"github.com/oshawa-skills/apiserver/internal/notify"
	"github.com/oshawa-skills/apiserver/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// workerCmd represents the worker command. It drains the notification
// queue and delivers the emails, so it only needs to run when the
// queue-backed notifier is configured.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume the notification queue and deliver emails",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		log, err := logger.New()
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		mailer, err := notify.NewSMTPMailer(cfg.Notify)
		if err != nil {
			return err
		}

		broker, err := server.NewBroker(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = broker.Close()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := func(ctx context.Context, msg mq.Message) error {
			var job notify.Job
			if err := json.Unmarshal(msg.Data, &job); err != nil {
				log.Error("discarding malformed notification job",
					zap.String("messageId", msg.ID),
					zap.Error(err))
				return nil
			}
			if err := mailer.Send(ctx, job); err != nil {
				log.Error("notification delivery failed",
					zap.String("messageId", msg.ID),
					zap.String("kind", string(job.Kind)),
					zap.Error(err))
				return err
			}
			log.Info("notification delivered",
				zap.String("messageId", msg.ID),
				zap.String("kind", string(job.Kind)))
			return nil
		}

		log.Info("worker consuming", zap.String("channel", cfg.Notify.Channel))
		if err := broker.Subscribe(ctx, cfg.Notify.Channel, handler); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("subscribe failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
