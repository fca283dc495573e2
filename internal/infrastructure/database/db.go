package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/matiscalella/fitzone/internal/core/repository"
	"github.com/matiscalella/fitzone/pkg/config"
)

var schemas = map[string]string{
	config.DriverMySQL: `
CREATE TABLE IF NOT EXISTS clients (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	surname VARCHAR(100) NOT NULL,
	membership_code INT NOT NULL
)`,
	config.DriverSQLite: `
CREATE TABLE IF NOT EXISTS clients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	surname TEXT NOT NULL,
	membership_code INTEGER NOT NULL
)`,
	config.DriverPostgres: `
CREATE TABLE IF NOT EXISTS clients (
	id SERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	surname VARCHAR(100) NOT NULL,
	membership_code INTEGER NOT NULL
)`,
}

// sql driver names registered by the imported drivers
var driverNames = map[string]string{
	config.DriverMySQL:    "mysql",
	config.DriverSQLite:   "sqlite",
	config.DriverPostgres: "pgx",
}

// Opener opens a database handle without connecting. sqlx.Open matches it.
type Opener func(driverName, dataSourceName string) (*sqlx.DB, error)

type DB struct {
	*sqlx.DB
}

// Provider hands out a fresh single-connection handle per call. It never
// pools across calls: every Open dials the store and the caller closes it.
type Provider struct {
	driver     string
	driverName string
	dsn        string
	open       Opener
	logger     *slog.Logger
}

func NewProvider(cfg config.DBConfig, logger *slog.Logger) (*Provider, error) {
	driverName, ok := driverNames[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		driver:     cfg.Driver,
		driverName: driverName,
		dsn:        dsn,
		open:       sqlx.Open,
		logger:     logger.With("component", "database", "driver", cfg.Driver),
	}, nil
}

// WithOpener replaces the function used to open handles.
func (p *Provider) WithOpener(open Opener) *Provider {
	p.open = open
	return p
}

func (p *Provider) Driver() string {
	return p.driver
}

// Open returns a live handle limited to one connection. The caller owns it and
// must Close it; use Release to also log close failures.
func (p *Provider) Open(ctx context.Context) (*DB, error) {
	db, err := p.open(p.driverName, p.dsn)
	if err != nil {
		return nil, &repository.ConnectionError{Driver: p.driver, Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &repository.ConnectionError{Driver: p.driver, Err: err}
	}

	if p.driver == config.DriverSQLite {
		// Set busy timeout to handle a second fitzone process on the same file
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, &repository.ConnectionError{Driver: p.driver, Err: err}
		}
	}

	p.logger.Debug("database connection opened")
	return &DB{db}, nil
}

// Release closes a handle obtained from Open.
func (p *Provider) Release(db *DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		p.logger.Warn("failed to close database connection", "error", err)
		return
	}
	p.logger.Debug("database connection closed")
}

// Ping opens and immediately releases a connection.
func (p *Provider) Ping(ctx context.Context) error {
	db, err := p.Open(ctx)
	if err != nil {
		return err
	}
	p.Release(db)
	return nil
}

// EnsureSchema creates the clients table when it does not exist yet.
func (p *Provider) EnsureSchema(ctx context.Context) error {
	db, err := p.Open(ctx)
	if err != nil {
		return err
	}
	defer p.Release(db)

	if _, err := db.ExecContext(ctx, schemas[p.driver]); err != nil {
		return &repository.StatementError{Op: "create schema", Err: err}
	}
	return nil
}

// BuildDSN turns the configured fields into a driver data source name. An
// explicit cfg.DSN wins.
func BuildDSN(cfg config.DBConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.Name
		mc.ParseTime = true
		// Report matched rows, not changed rows, so an update that rewrites
		// identical values is not mistaken for a missing client
		mc.ClientFoundRows = true
		return mc.FormatDSN(), nil
	case config.DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   addr,
			Path:   "/" + cfg.Name,
		}
		q := url.Values{}
		if cfg.SSLMode != "" {
			q.Set("sslmode", cfg.SSLMode)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil
	case config.DriverSQLite:
		return cfg.Path, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}
