package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/JoyPanel/internal/config"
	"github.com/cjeanneret/JoyPanel/internal/debug"
	"github.com/cjeanneret/JoyPanel/internal/logic/control"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Summary("JoyPanel")
	debug.Value("Config", configPath)
	return cfg, nil
}

func runPanel(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var frames io.Writer
	if dumpFrames {
		if !cfg.UseMockDisplay() {
			debug.Info("--dump ignored: display type is %s", cfg.Display.Type)
		}
		frames = cmd.OutOrStdout()
	}
	p, err := openPanel(cfg, frames)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.close(); err != nil {
			debug.Error(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, p, resolvePort(webPort.port(), cfg.Defaults.WebPort), control.WithMaxTicks(maxTicks))
}
