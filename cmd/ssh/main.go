package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/draw"
	"github.com/tomz197/twinorbit/internal/limit"
	applog "github.com/tomz197/twinorbit/internal/logging"
	"github.com/tomz197/twinorbit/internal/loop"
	"github.com/tomz197/twinorbit/internal/ranking"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultConfigDir   = "."
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ssh server: %v\n", err)
		os.Exit(1)
	}
}

// run serves until SIGINT/SIGTERM. Every fatal path returns so deferred cleanup runs.
func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	configDir := config.GetEnv("CONFIG_DIR", defaultConfigDir)

	settings, err := config.Load(configDir)
	if err != nil {
		return err
	}
	logger := applog.Setup(os.Stderr, settings.Log.Level, "twinorbit")
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "configDir", configDir)

	var store *ranking.Store
	if settings.Storage.Driver != "" {
		store, err = ranking.Open(settings.Storage)
		if err != nil {
			return fmt.Errorf("open ranking store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close ranking store", "err", err)
			}
		}()
		logger.Info("ranking store ready", "driver", settings.Storage.Driver)
	}

	hub := loop.NewHub(logger.WithPrefix("hub"))

	limiter := limit.New(limit.Config{
		SessionsPerMinute: envFloat("SSH_SESSIONS_PER_MINUTE", 10),
		Burst:             envInt("SSH_SESSION_BURST", 5),
		Enabled:           config.GetEnv("SSH_RATE_LIMIT", "true") == "true",
	}, logger.WithPrefix("limit"))
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go limiter.RunCleanup(cleanupCtx, time.Minute)

	app := &app{
		settings: settings,
		store:    store,
		hub:      hub,
		logger:   logger,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			app.gameMiddleware,
			activeterm.Middleware(),
			limiter.Middleware(),
			logging.Middleware(),
		),
		// TCP_NODELAY keeps key presses snappy
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-done:
	}
	logger.Info("Shutting down server...")

	logger.Info("Notifying connected players about shutdown...", "sessions", hub.Count())
	if hub.Shutdown(15 * time.Second) {
		logger.Info("All sessions closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// app holds what every session shares: settings, the ranking store and the hub.
type app struct {
	settings config.Settings
	store    *ranking.Store
	hub      *loop.Hub
	logger   *log.Logger
}

// gameMiddleware runs a game session on the connection.
func (a *app) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		a.logger.Info("New game session", "user", sess.User(), "term", pty.Term,
			"size", fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height))

		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		opts := loop.SessionOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Settings:     a.settings,
			Hub:          a.hub,
			Logger:       a.logger.WithPrefix("session"),
		}
		if a.store != nil {
			opts.Ranking = a.store
		}

		session, err := loop.NewSession(bufio.NewReader(sess), sess, opts)
		if err != nil {
			a.logger.Error("failed to create session", "user", sess.User(), "err", err)
			return
		}
		if err := session.Run(sess.Context()); err != nil {
			a.logger.Error("game error", "user", sess.User(), "err", err)
		}

		a.logger.Info("Session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(config.GetEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(config.GetEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
