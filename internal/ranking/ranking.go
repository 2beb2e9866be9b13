// Package ranking persists finished runs and serves the leaderboard.
package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tomz197/twinorbit/internal/config"
)

const (
	maxNameLength = 32
	anonymous     = "anonymous"
)

// Entry is one finished run.
type Entry struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:32;not null;index"`
	Score     int       `gorm:"not null;index"`
	Seconds   float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the default table name.
func (Entry) TableName() string {
	return "ranking_entries"
}

// Store is a leaderboard backed by gorm. Safe for concurrent use.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the schema.
// For sqlite an empty DSN or ":memory:" opens a private in-memory database.
func Open(cfg config.StorageSettings) (*Store, error) {
	gcfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db       *gorm.DB
		err      error
		inMemory bool
	)
	switch cfg.Driver {
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" || dsn == ":memory:" {
			dsn = "file::memory:"
			inMemory = true
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), gcfg)
	default:
		return nil, fmt.Errorf("unsupported ranking driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if inMemory {
		// Every new connection would see an empty database.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrating ranking schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Submit records a finished run. Names are trimmed and truncated; a blank name
// is stored as "anonymous". Negative scores are stored as zero.
func (s *Store) Submit(ctx context.Context, name string, score int, elapsed time.Duration) (Entry, error) {
	e := Entry{
		Name:    normalizeName(name),
		Score:   max(score, 0),
		Seconds: elapsed.Seconds(),
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return Entry{}, fmt.Errorf("saving ranking entry: %w", err)
	}
	return e, nil
}

// Top returns up to n entries, best score first. Ties go to the earlier run.
func (s *Store) Top(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	var entries []Entry
	err := s.db.WithContext(ctx).
		Order("score DESC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("loading ranking: %w", err)
	}
	return entries, nil
}

// Place returns the 1-based leaderboard position a score would take.
func (s *Store) Place(ctx context.Context, score int) (int, error) {
	var better int64
	err := s.db.WithContext(ctx).Model(&Entry{}).Where("score > ?", score).Count(&better).Error
	if err != nil {
		return 0, fmt.Errorf("counting ranking: %w", err)
	}
	return int(better) + 1, nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return anonymous
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}
