// Command server runs the HTTP backend behind the service report form.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dharsanguruparan/reporte/internal/config"
	"github.com/dharsanguruparan/reporte/internal/log"
	"github.com/dharsanguruparan/reporte/internal/server"
	"github.com/dharsanguruparan/reporte/internal/submit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		log.Warnf("ignoring log level %q: %v", cfg.LogLevel, err)
	}

	srv := server.New(cfg, submit.New(cfg.SubmitTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		log.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
