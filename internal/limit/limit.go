// Package limit throttles new SSH sessions per client address.
package limit

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"golang.org/x/time/rate"
)

// Config sets the per-address session rate.
type Config struct {
	SessionsPerMinute float64
	Burst             int
	Enabled           bool
}

// SessionLimiter keeps one token bucket per remote host.
type SessionLimiter struct {
	config  Config
	clients map[string]*rate.Limiter
	mu      sync.RWMutex
	logger  *log.Logger
}

// New creates a limiter. A nil logger uses the default logger.
func New(config Config, logger *log.Logger) *SessionLimiter {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionLimiter{
		config:  config,
		clients: make(map[string]*rate.Limiter),
		logger:  logger,
	}
}

func (l *SessionLimiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.clients[host]
	l.mu.RUnlock()
	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if limiter, exists = l.clients[host]; !exists {
		limiter = rate.NewLimiter(rate.Limit(l.config.SessionsPerMinute/60), l.config.Burst)
		l.clients[host] = limiter
	}
	return limiter
}

// Allow reports whether host may open another session now.
func (l *SessionLimiter) Allow(host string) bool {
	if !l.config.Enabled {
		return true
	}
	return l.getLimiter(host).Allow()
}

// Len returns the number of tracked hosts.
func (l *SessionLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

// Prune forgets hosts whose bucket has refilled completely.
func (l *SessionLimiter) Prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for host, limiter := range l.clients {
		if limiter.TokensAt(now) >= float64(l.config.Burst) {
			delete(l.clients, host)
		}
	}
}

// RunCleanup prunes idle hosts every interval until ctx is done.
func (l *SessionLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Prune(now)
		}
	}
}

// Middleware rejects sessions from hosts over their rate.
func (l *SessionLimiter) Middleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			host := remoteHost(sess.RemoteAddr())
			if !l.Allow(host) {
				l.logger.Warn("session rate limit exceeded", "host", host, "user", sess.User())
				fmt.Fprintln(sess, "Too many sessions from your address. Please wait a minute and try again.")
				_ = sess.Exit(1)
				return
			}
			next(sess)
		}
	}
}

func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
