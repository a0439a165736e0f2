package database

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects the backing database. DatabaseURL wins over the discrete
// postgres fields when set.
type Options struct {
	Driver      string
	DatabaseURL string
	Host        string
	User        string
	Password    string
	Name        string
	Port        string
	SQLitePath  string
	Debug       bool
}

var (
	DB   *gorm.DB
	once sync.Once
)

// Connect opens the process-wide connection once and exits on failure.
func Connect(opts Options) *gorm.DB {
	once.Do(func() {
		db, err := Open(opts)
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		DB = db
	})

	return DB
}

// Open opens a new gorm connection without touching the global.
func Open(opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
	if !opts.Debug {
		cfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	switch strings.ToLower(opts.Driver) {
	case "", DriverPostgres:
		return gorm.Open(postgres.Open(postgresDSN(opts)), cfg)
	case DriverSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = "skillswap.db"
		}
		db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}
}

func postgresDSN(opts Options) string {
	if opts.DatabaseURL != "" {
		return opts.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		valueOrDefault(opts.Host, "localhost"),
		valueOrDefault(opts.User, "postgres"),
		opts.Password,
		valueOrDefault(opts.Name, "skillswap"),
		valueOrDefault(opts.Port, "5432"),
	)
}

func valueOrDefault(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
