package devolucao

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
)

// Repository defines persistence operations for returns.
type Repository interface {
	// Create inserts the return and its items.
	Create(ctx context.Context, d *Devolucao) error

	// GetByID returns a return with items, or apperror.NewNotFound.
	GetByID(ctx context.Context, devolucaoID id.ID) (*Devolucao, error)

	// GetForUpdate returns a return with items and a row lock on the return.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, devolucaoID id.ID) (*Devolucao, error)

	// UpdateStatus flips the status (and stores motivo, possibly empty) only
	// when the row still holds the expected current status. Returns false
	// when another transition won.
	UpdateStatus(ctx context.Context, devolucaoID id.ID, de, para Status, motivo string, decididoEm time.Time) (bool, error)

	// List returns returns matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Devolucao, error)
}

// ListFilter restricts return listings.
type ListFilter struct {
	EmpresaID  *id.ID
	VendedorID *id.ID
	Status     *Status
	Limit      int
	Offset     int
}
