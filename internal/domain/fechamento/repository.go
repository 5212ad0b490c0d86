package fechamento

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

// Repository defines persistence operations for settlements.
type Repository interface {
	// GetVendedor returns a seller scoped to the caller's company, or
	// apperror.NewNotFound when absent or owned by another tenant.
	GetVendedor(ctx context.Context, empresaID, vendedorID id.ID) (*Vendedor, error)

	// Upsert inserts the settlement or overwrites the existing row for the
	// same (vendedor, data), as a single constrained write.
	Upsert(ctx context.Context, f *Fechamento) error

	// GetByVendedorData returns the settlement for one seller and day, or
	// apperror.NewNotFound.
	GetByVendedorData(ctx context.Context, vendedorID id.ID, data time.Time) (*Fechamento, error)

	// ListByVendedor returns settlements for a seller in a date range,
	// newest first.
	ListByVendedor(ctx context.Context, vendedorID id.ID, de, ate time.Time) ([]*Fechamento, error)
}

// SalesAggregator supplies the day's sales totals for a seller.
// External collaborator: given seller and date it returns four totals,
// all zero when no sales exist. Faults propagate, they are never swallowed.
type SalesAggregator interface {
	TotaisDoDia(ctx context.Context, vendedorID id.ID, data time.Time) (TotaisVenda, error)
}

// KitResolver resolves the commission rate from the seller's assigned kit
// for exactly the settlement date. Absence of a kit is not an error.
type KitResolver interface {
	ComissaoDoKit(ctx context.Context, vendedorID id.ID, data time.Time) (types.Money, bool, error)
}
