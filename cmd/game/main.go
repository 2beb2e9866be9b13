package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/logging"
	"github.com/tomz197/twinorbit/internal/loop"
	"github.com/tomz197/twinorbit/internal/ranking"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	settings, err := config.Load(config.GetEnv("CONFIG_DIR", "."))
	if err != nil {
		return err
	}

	// Logs go to a file; stdout belongs to the game.
	logFile, err := os.OpenFile(config.GetEnv("LOG_FILE", "twinorbit.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.Setup(logFile, settings.Log.Level, "twinorbit")

	opts := loop.SessionOptions{
		Username: config.GetEnv("USER", ""),
		Settings: settings,
		Logger:   logger,
	}
	if settings.Storage.Driver != "" {
		store, err := ranking.Open(settings.Storage)
		if err != nil {
			logger.Warn("ranking disabled", "err", err)
		} else {
			defer store.Close()
			opts.Ranking = store
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := loop.NewSession(bufio.NewReader(os.Stdin), os.Stdout, opts)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}
