package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/kbfirmware/kbsetup/internal/config"
	"github.com/kbfirmware/kbsetup/internal/logging"
	"github.com/kbfirmware/kbsetup/internal/menu"
	"github.com/kbfirmware/kbsetup/internal/terminal"
	"github.com/kbfirmware/kbsetup/internal/wizard"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	repoFlag := flag.String("repo", "", "path to the config repo (skips the repo prompt)")
	configFlag := flag.String("config", config.Path(), "path to the kbsetup config file")
	flag.Parse()

	cfg := config.LoadOrDefault(*configFlag)
	if *repoFlag != "" {
		cfg.RepoPath = *repoFlag
	}

	log, err := setupLogger()
	if err != nil {
		// The wizard still works without a log file.
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	screen, err := terminal.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	restoreVT, err := screen.EnableVT()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer restoreVT()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = wizard.New(cfg, screen, log).Run(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, menu.ErrCanceled):
		fmt.Fprintln(os.Stdout, "Canceled.")
		return 1
	default:
		var stopErr *wizard.StopError
		if errors.As(err, &stopErr) {
			if stopErr.Reason != "" {
				fmt.Fprintln(os.Stdout, stopErr.Reason)
			}
			return 1
		}
		log.Error("wizard failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
}

func setupLogger() (*zap.Logger, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}
	return logging.New(config.LogPath())
}
