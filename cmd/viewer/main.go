// Package main opens the slot viewer window.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"slot-viewer/internal/app"
	"slot-viewer/internal/config"
	"slot-viewer/internal/detect"
	"slot-viewer/internal/env"
	"slot-viewer/internal/graphics"
	"slot-viewer/internal/logger"
)

const (
	flagConfig    = "config"
	flagEnv       = "env"
	flagDetectURL = "detect-url"
	flagFPS       = "fps"
	flagWrite     = "write-config"

	healthTimeout = 2 * time.Second
)

func main() {
	viewer := &cli.App{
		Name:      "viewer",
		Usage:     "show a photo with detected slots drawn over it",
		ArgsUsage: "[photo]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   config.ConfigPath,
				Usage:   "load settings from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagEnv,
				Value: ".env",
				Usage: "load environment overrides from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagDetectURL,
				Usage: "base `URL` of the slot detection service",
			},
			&cli.BoolFlag{
				Name:  flagFPS,
				Usage: "show the FPS counter",
			},
			&cli.BoolFlag{
				Name:  flagWrite,
				Usage: "write the effective settings to the config file and exit",
			},
		},
		Action: run,
	}
	if err := viewer.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := env.Load(c.String(flagEnv)); err != nil {
		return errors.Wrap(err, "load env")
	}
	cfg, cfgErr := config.Load(c.String(flagConfig))
	if u := c.String(flagDetectURL); u != "" {
		cfg.DetectURL = u
	}
	if c.Bool(flagFPS) {
		cfg.ShowFPS = true
	}
	if c.Bool(flagWrite) {
		if cfgErr != nil {
			return cfgErr
		}
		return config.Save(c.String(flagConfig), cfg)
	}

	log := logger.New(cfg.LogPath)
	defer func() {
		_ = log.Close()
	}()
	if cfgErr != nil {
		log.Error("config", cfgErr, "path", c.String(flagConfig))
	}

	client := detect.NewClient(cfg.DetectURL, cfg.RequestTimeout)
	ctx, cancel := context.WithTimeout(c.Context, healthTimeout)
	if err := client.Health(ctx); err != nil {
		log.Error("detection service unreachable, uploads will fail until it is up", err, "url", cfg.DetectURL)
	}
	cancel()

	viewer := app.New(cfg, log, client)
	defer viewer.Close()

	opts := graphics.Options{
		Title:     cfg.WindowTitle,
		Width:     cfg.WindowWidth,
		Height:    cfg.WindowHeight,
		TargetFPS: cfg.TargetFPS,
		OnClose:   viewer.ReleaseGPU,
	}
	if c.Args().Present() {
		photo := c.Args().First()
		opts.OnInit = func() { viewer.Open(photo) }
	}
	graphics.Run(opts, viewer.Resize, viewer.Update, viewer.Draw)
	return nil
}
