package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matiscalella/fitzone/internal/core/domain"
	"github.com/matiscalella/fitzone/internal/core/repository"
	"github.com/matiscalella/fitzone/pkg/config"
)

const (
	selectAllClientsQuery = `
		SELECT id, name, surname, membership_code
		FROM clients
		ORDER BY id
	`
	selectClientByIDQuery = `
		SELECT id, name, surname, membership_code
		FROM clients
		WHERE id = ?
	`
	insertClientQuery = `
		INSERT INTO clients (name, surname, membership_code)
		VALUES (?, ?, ?)
	`
	updateClientQuery = `
		UPDATE clients
		SET name = ?, surname = ?, membership_code = ?
		WHERE id = ?
	`
	deleteClientQuery = `DELETE FROM clients WHERE id = ?`
)

type clientRepository struct {
	provider *Provider
	logger   *slog.Logger
}

func NewClientRepository(provider *Provider) repository.ClientRepository {
	return &clientRepository{
		provider: provider,
		logger:   provider.logger.With("repository", "clients"),
	}
}

func (r *clientRepository) FindAll(ctx context.Context) ([]*domain.Client, error) {
	db, err := r.provider.Open(ctx)
	if err != nil {
		return nil, r.fail("find_all", 0, err)
	}
	defer r.provider.Release(db)

	clients := []*domain.Client{}
	if err := db.SelectContext(ctx, &clients, db.Rebind(selectAllClientsQuery)); err != nil {
		return nil, r.fail("find_all", 0, &repository.StatementError{Op: "list clients", Err: err})
	}
	if clients == nil {
		clients = []*domain.Client{}
	}

	return clients, nil
}

func (r *clientRepository) FindByID(ctx context.Context, id int64) (*domain.Client, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", repository.ErrClientNotFound, id)
	}

	db, err := r.provider.Open(ctx)
	if err != nil {
		return nil, r.fail("find_by_id", id, err)
	}
	defer r.provider.Release(db)

	var client domain.Client
	err = db.GetContext(ctx, &client, db.Rebind(selectClientByIDQuery), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", repository.ErrClientNotFound, id)
	}
	if err != nil {
		return nil, r.fail("find_by_id", id, &repository.StatementError{Op: "find client", Err: err})
	}

	return &client, nil
}

func (r *clientRepository) Save(ctx context.Context, client *domain.Client) (int64, error) {
	if client == nil {
		return 0, fmt.Errorf("%w: nil client", repository.ErrInvalidClient)
	}

	db, err := r.provider.Open(ctx)
	if err != nil {
		return 0, r.fail("save", 0, err)
	}
	defer r.provider.Release(db)

	var id int64
	if r.provider.Driver() == config.DriverPostgres {
		// pgx has no LastInsertId
		query := db.Rebind(insertClientQuery + " RETURNING id")
		err := db.QueryRowxContext(ctx, query, client.Name, client.Surname, client.MembershipCode).Scan(&id)
		if err != nil {
			return 0, r.fail("save", 0, &repository.StatementError{Op: "insert client", Err: err})
		}
	} else {
		result, err := db.ExecContext(ctx, db.Rebind(insertClientQuery),
			client.Name,
			client.Surname,
			client.MembershipCode,
		)
		if err != nil {
			return 0, r.fail("save", 0, &repository.StatementError{Op: "insert client", Err: err})
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return 0, r.fail("save", 0, &repository.StatementError{Op: "get rows affected", Err: err})
		}
		if rows != 1 {
			return 0, r.fail("save", 0, &repository.StatementError{
				Op:  "insert client",
				Err: fmt.Errorf("expected 1 row affected, got %d", rows),
			})
		}

		id, err = result.LastInsertId()
		if err != nil {
			return 0, r.fail("save", 0, &repository.StatementError{Op: "get inserted id", Err: err})
		}
	}

	client.ID = id
	r.logger.Info("client saved", "client_id", id)
	return id, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	if client == nil {
		return fmt.Errorf("%w: nil client", repository.ErrInvalidClient)
	}
	if !client.IsPersistent() {
		return fmt.Errorf("%w: client has no id", repository.ErrInvalidClient)
	}

	db, err := r.provider.Open(ctx)
	if err != nil {
		return r.fail("update", client.ID, err)
	}
	defer r.provider.Release(db)

	result, err := db.ExecContext(ctx, db.Rebind(updateClientQuery),
		client.Name,
		client.Surname,
		client.MembershipCode,
		client.ID,
	)
	if err != nil {
		return r.fail("update", client.ID, &repository.StatementError{Op: "update client", Err: err})
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return r.fail("update", client.ID, &repository.StatementError{Op: "get rows affected", Err: err})
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", repository.ErrClientNotFound, client.ID)
	}

	r.logger.Info("client updated", "client_id", client.ID)
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", repository.ErrClientNotFound, id)
	}

	db, err := r.provider.Open(ctx)
	if err != nil {
		return r.fail("delete", id, err)
	}
	defer r.provider.Release(db)

	result, err := db.ExecContext(ctx, db.Rebind(deleteClientQuery), id)
	if err != nil {
		return r.fail("delete", id, &repository.StatementError{Op: "delete client", Err: err})
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return r.fail("delete", id, &repository.StatementError{Op: "get rows affected", Err: err})
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", repository.ErrClientNotFound, id)
	}

	r.logger.Info("client deleted", "client_id", id)
	return nil
}

// fail logs a store failure and hands it back unchanged.
func (r *clientRepository) fail(op string, id int64, err error) error {
	attrs := []any{"op", op, "error", err}
	if id > 0 {
		attrs = append(attrs, "client_id", id)
	}
	r.logger.Error("client repository operation failed", attrs...)
	return err
}
