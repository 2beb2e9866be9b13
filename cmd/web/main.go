package main

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/twinorbit/internal/config"
	"github.com/tomz197/twinorbit/internal/logging"
	"github.com/tomz197/twinorbit/internal/ranking"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
	topShown    = 10
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(htmlPage))

// pageData feeds index.html.
type pageData struct {
	SSHHost string
	SSHPort string
	Top     []ranking.Entry
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_DISPLAY_PORT", "2222")

	settings, err := config.Load(config.GetEnv("CONFIG_DIR", "."))
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, settings.Log.Level, "web")

	var store *ranking.Store
	if settings.Storage.Driver != "" {
		if store, err = ranking.Open(settings.Storage); err != nil {
			logger.Warn("leaderboard disabled", "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		data := pageData{SSHHost: sshHost, SSHPort: sshPort}
		if store != nil {
			data.Top = loadTop(r.Context(), store, logger)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, data); err != nil {
			logger.Error("render page", "err", err)
		}
	})

	addr := net.JoinHostPort(host, port)
	logger.Info("Starting web server", "url", "http://"+addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func loadTop(ctx context.Context, store *ranking.Store, logger *log.Logger) []ranking.Entry {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	top, err := store.Top(ctx, topShown)
	if err != nil {
		logger.Warn("load leaderboard", "err", err)
		return nil
	}
	return top
}
