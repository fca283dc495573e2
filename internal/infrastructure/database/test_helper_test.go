package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/matiscalella/fitzone/internal/core/domain"
	"github.com/matiscalella/fitzone/internal/core/repository"
	"github.com/matiscalella/fitzone/internal/logging"
	"github.com/matiscalella/fitzone/pkg/config"
)

// newSQLiteProvider returns a provider for a fresh sqlite file with the
// clients table created. A file is used instead of :memory: because every
// Open starts a new connection.
func newSQLiteProvider(t *testing.T) *Provider {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "fit_zone.db"),
	}
	provider, err := NewProvider(cfg, logging.Discard())
	require.NoError(t, err)
	require.NoError(t, provider.EnsureSchema(context.Background()))

	return provider
}

func newSQLiteRepository(t *testing.T) repository.ClientRepository {
	t.Helper()
	return NewClientRepository(newSQLiteProvider(t))
}

// newMockRepository wires a repository to a sqlmock connection. The provider
// pretends to be the given driver so Rebind and the insert path match it.
func newMockRepository(t *testing.T, driver string) (repository.ClientRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	provider, err := NewProvider(config.DBConfig{
		Driver: driver,
		Host:   "localhost",
		Port:   1,
		Name:   "fit_zone_db",
		User:   "root",
		Path:   "unused.db",
	}, logging.Discard())
	require.NoError(t, err)

	provider.WithOpener(func(driverName, _ string) (*sqlx.DB, error) {
		return sqlx.NewDb(mockDB, driverName), nil
	})

	return NewClientRepository(provider), mock
}

func saveClient(t *testing.T, repo repository.ClientRepository, name, surname string, code int) *domain.Client {
	t.Helper()

	client := domain.NewClient(name, surname, code)
	id, err := repo.Save(context.Background(), client)
	require.NoError(t, err)
	require.Positive(t, id)

	return client
}
