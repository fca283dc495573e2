package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiscalella/fitzone/internal/core/repository"
	"github.com/matiscalella/fitzone/internal/logging"
	"github.com/matiscalella/fitzone/pkg/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DBConfig
		want string
	}{
		{
			name: "postgres escapes credentials",
			cfg: config.DBConfig{
				Driver: config.DriverPostgres, Host: "db", Port: 5432,
				Name: "gym", User: "fit", Password: "p@ss word", SSLMode: "disable",
			},
			want: "postgres://fit:p%40ss%20word@db:5432/gym?sslmode=disable",
		},
		{
			name: "sqlite",
			cfg:  config.DBConfig{Driver: config.DriverSQLite, Path: "/var/lib/fitzone/fit_zone.db"},
			want: "/var/lib/fitzone/fit_zone.db",
		},
		{
			name: "explicit dsn",
			cfg:  config.DBConfig{Driver: config.DriverMySQL, DSN: "u:p@unix(/tmp/mysql.sock)/gym"},
			want: "u:p@unix(/tmp/mysql.sock)/gym",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildDSN(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildDSN_MySQL(t *testing.T) {
	dsn, err := BuildDSN(config.DBConfig{
		Driver: config.DriverMySQL, Host: "localhost", Port: 3306,
		Name: "fit_zone_db", User: "root", Password: "pw",
	})
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "pw", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "localhost:3306", parsed.Addr)
	assert.Equal(t, "fit_zone_db", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.True(t, parsed.ClientFoundRows)
}

func TestNewProvider_UnsupportedDriver(t *testing.T) {
	_, err := NewProvider(config.DBConfig{Driver: "oracle"}, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestProvider_SQLite(t *testing.T) {
	provider := newSQLiteProvider(t)
	ctx := context.Background()

	assert.Equal(t, config.DriverSQLite, provider.Driver())
	require.NoError(t, provider.Ping(ctx))

	// Idempotent
	require.NoError(t, provider.EnsureSchema(ctx))

	db, err := provider.Open(ctx)
	require.NoError(t, err)
	defer provider.Release(db)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM clients"))
	assert.Zero(t, count)
	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestProvider_SQLiteUnreachable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "fit_zone.db")
	provider, err := NewProvider(config.DBConfig{Driver: config.DriverSQLite, Path: path}, logging.Discard())
	require.NoError(t, err)

	err = provider.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, repository.IsConnectionError(err))
}

func TestProvider_ReleaseNil(t *testing.T) {
	provider := newSQLiteProvider(t)
	assert.NotPanics(t, func() { provider.Release(nil) })
}
