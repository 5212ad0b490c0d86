package transferencia

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
)

// Repository defines persistence operations for transfers.
type Repository interface {
	// Create inserts the transfer and its items.
	Create(ctx context.Context, t *Transferencia) error

	// GetByID returns a transfer with items, or apperror.NewNotFound.
	GetByID(ctx context.Context, transferenciaID id.ID) (*Transferencia, error)

	// GetForUpdate returns a transfer with items and a row lock on the
	// transfer. Must be called inside a transaction.
	GetForUpdate(ctx context.Context, transferenciaID id.ID) (*Transferencia, error)

	// UpdateStatus flips the status only when the row still holds the
	// expected current status. Returns false when another transition won.
	UpdateStatus(ctx context.Context, transferenciaID id.ID, de, para Status, decididoEm time.Time) (bool, error)

	// List returns transfers matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Transferencia, error)
}

// ListFilter restricts transfer listings.
type ListFilter struct {
	EmpresaID  *id.ID
	VendedorID *id.ID
	Status     *Status
	Limit      int
	Offset     int
}
