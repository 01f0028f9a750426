// Package main serves placeholder slot detections for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"slot-viewer/internal/env"
	"slot-viewer/internal/logger"
	"slot-viewer/internal/slotserver"
)

const (
	flagAddr = "addr"
	flagLog  = "log"

	shutdownTimeout = 5 * time.Second
)

func main() {
	// Flag defaults read SLOTSTUB_ADDR, so .env must be loaded before parsing.
	if err := env.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	stub := &cli.App{
		Name:  "slotstub",
		Usage: "answer /api/detect_slots with two placeholder slots per image",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagAddr,
				Value:   ":8000",
				EnvVars: []string{"SLOTSTUB_ADDR"},
				Usage:   "listen on `ADDR`",
			},
			&cli.StringFlag{
				Name:  flagLog,
				Value: "logs/slotstub.log",
				Usage: "write the JSON log to `FILE`",
			},
		},
		Action: serve,
	}
	if err := stub.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	log := logger.New(c.String(flagLog))
	defer func() {
		_ = log.Close()
	}()

	srv := &http.Server{
		Addr:              c.String(flagAddr),
		Handler:           slotserver.New(log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("slot stub listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("slot stub shutting down")
	return srv.Shutdown(shutdownCtx)
}
