package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/app"
	"github.com/elfarodelsaber/storefront/internal/version"
)

// setupLogger configures the log format and level for the service.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

func main() {
	setupLogger()
	cfg := app.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr": cfg.HTTPAddr,
		"ops_addr":  cfg.OpsAddr,
		"version":   version.GetVersion(),
	}).Info("starting storefront")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("storefront stopped with error")
	}

	log.Info("storefront stopped")
}
