package repository

import (
	"context"

	"github.com/matiscalella/fitzone/internal/core/domain"
)

// ClientRepository is the data access contract for gym clients. Every method
// is a single round trip to the store.
//
// Not-found conditions are reported as ErrClientNotFound; store failures as
// *ConnectionError or *StatementError.
type ClientRepository interface {
	// FindAll returns every client ordered by ascending ID. An empty table
	// yields an empty, non-nil slice.
	FindAll(ctx context.Context) ([]*domain.Client, error)
	FindByID(ctx context.Context, id int64) (*domain.Client, error)
	// Save inserts the client, ignoring client.ID, and stores the assigned ID
	// back into it.
	Save(ctx context.Context, client *domain.Client) (int64, error)
	// Update overwrites name, surname and membership code of the row with
	// client.ID.
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id int64) error
}
