//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/matiscalella/fitzone/internal/core/domain"
	"github.com/matiscalella/fitzone/internal/core/repository"
	"github.com/matiscalella/fitzone/internal/logging"
	"github.com/matiscalella/fitzone/pkg/config"
)

const (
	mysqlImage    = "mysql:8.0"
	mysqlPassword = "fitzone-test"
)

// setupMySQL starts a throwaway MySQL server and returns a provider for it
// with the clients table created.
func setupMySQL(t *testing.T) *Provider {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      config.DefaultDBName,
		},
		// The entrypoint runs a temporary server first; the second
		// "ready for connections" line belongs to the real one
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").WithOccurrence(2),
			wait.ForListeningPort("3306/tcp"),
		).WithDeadline(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	provider, err := NewProvider(config.DBConfig{
		Driver:   config.DriverMySQL,
		Host:     host,
		Port:     port.Int(),
		Name:     config.DefaultDBName,
		User:     config.DefaultDBUser,
		Password: mysqlPassword,
	}, logging.Discard())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return provider.Ping(ctx) == nil
	}, 30*time.Second, 500*time.Millisecond)
	require.NoError(t, provider.EnsureSchema(ctx))

	return provider
}

func TestMySQL_ClientLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}

	repo := NewClientRepository(setupMySQL(t))
	ctx := context.Background()

	clients, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	id, err := repo.Save(ctx, domain.NewClient("Nicolas", "Camps", 555))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &domain.Client{ID: id, Name: "Nicolas", Surname: "Camps", MembershipCode: 555}, found)

	// Same values: matched but unchanged rows must still count as found
	require.NoError(t, repo.Update(ctx, found))

	found.MembershipCode = 556
	require.NoError(t, repo.Update(ctx, found))

	assert.ErrorIs(t, repo.Update(ctx, &domain.Client{ID: id + 1, Name: "X", Surname: "Y"}), repository.ErrClientNotFound)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), repository.ErrClientNotFound)

	clients, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)
}

func TestMySQL_WrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}

	good := setupMySQL(t)

	mc, err := mysql.ParseDSN(good.dsn)
	require.NoError(t, err)
	mc.Passwd = "wrong"

	bad, err := NewProvider(config.DBConfig{
		Driver: config.DriverMySQL,
		DSN:    mc.FormatDSN(),
	}, logging.Discard())
	require.NoError(t, err)

	err = bad.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, repository.IsConnectionError(err))

	_, err = NewClientRepository(bad).FindAll(context.Background())
	assert.True(t, repository.IsConnectionError(err))
}
