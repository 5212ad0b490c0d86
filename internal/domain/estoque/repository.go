package estoque

import (
	"context"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
)

// Repository defines persistence operations for stock balances and audit logs.
// The increment operations are single constrained upserts; callers run them
// inside the transaction that owns the surrounding state transition.
type Repository interface {
	// GetSaldoVendedor returns the current seller balance, zero when absent.
	GetSaldoVendedor(ctx context.Context, vendedorID, produtoID id.ID) (SaldoVendedor, error)

	// GetSaldoVendedorForUpdate returns the seller balance with a row lock.
	// Must be called inside a transaction.
	GetSaldoVendedorForUpdate(ctx context.Context, vendedorID, produtoID id.ID) (SaldoVendedor, error)

	// IncrementVendedor adds delta (may be negative) to a seller balance,
	// inserting the row when absent.
	IncrementVendedor(ctx context.Context, vendedorID, produtoID id.ID, delta int) error

	// IncrementEmpresa adds delta to a company balance, inserting when absent.
	IncrementEmpresa(ctx context.Context, empresaID, produtoID id.ID, delta int) error

	// ListSaldosVendedor returns all non-zero balances of one seller.
	ListSaldosVendedor(ctx context.Context, vendedorID id.ID) ([]SaldoVendedor, error)

	// ListSaldosEmpresa returns all non-zero balances of one company.
	ListSaldosEmpresa(ctx context.Context, empresaID id.ID) ([]SaldoEmpresa, error)

	// CreateLog appends an audit entry.
	CreateLog(ctx context.Context, entry *Log) error

	// ListLogs returns audit entries for one reference, oldest first.
	ListLogs(ctx context.Context, referenciaID id.ID) ([]Log, error)
}
