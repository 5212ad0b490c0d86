// Package transferencia provides the company → seller inventory transfer
// state machine. Stock mutation happens exactly once, on acceptance.
package transferencia

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

// Status is the transfer lifecycle state. Transitions are one-directional:
// aguardando_aceite → aceita | recusada | cancelada, all terminal.
type Status string

const (
	StatusAguardandoAceite Status = "aguardando_aceite"
	StatusAceita           Status = "aceita"
	StatusRecusada         Status = "recusada"
	StatusCancelada        Status = "cancelada"
)

// Transferencia is a batch hand-off of products from a company to a seller.
type Transferencia struct {
	ID         id.ID  `db:"id" json:"id"`
	EmpresaID  id.ID  `db:"empresa_id" json:"empresa_id"`
	VendedorID id.ID  `db:"vendedor_id" json:"vendedor_id"`
	Status     Status `db:"status" json:"status"`

	// TotalItens is the sum of item quantities, denormalized at creation.
	TotalItens int    `db:"total_itens" json:"total_itens"`
	Observacao string `db:"observacao" json:"observacao,omitempty"`

	CriadoEm   time.Time  `db:"criado_em" json:"criado_em"`
	DecididoEm *time.Time `db:"decidido_em" json:"decidido_em,omitempty"`

	Itens []Item `db:"-" json:"itens"`
}

// Item is one product line of a transfer.
type Item struct {
	ID              id.ID       `db:"id" json:"id"`
	TransferenciaID id.ID       `db:"transferencia_id" json:"-"`
	ProdutoID       id.ID       `db:"produto_id" json:"produto_id"`
	Quantidade      int         `db:"quantidade" json:"quantidade"`
	PrecoUnitario   types.Money `db:"preco_unitario" json:"preco_unitario"`
}

// Pendente reports whether the transfer still awaits a seller decision.
func (t *Transferencia) Pendente() bool {
	return t.Status == StatusAguardandoAceite
}

// Validate implements invariant checks for a transfer about to be persisted.
func (t *Transferencia) Validate(ctx context.Context) error {
	if id.IsNil(t.EmpresaID) {
		return apperror.NewValidation("empresa is required").
			WithDetail("field", "empresa_id")
	}
	if id.IsNil(t.VendedorID) {
		return apperror.NewValidation("vendedor is required").
			WithDetail("field", "vendedor_id")
	}
	if len(t.Itens) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "itens")
	}
	for i, item := range t.Itens {
		if id.IsNil(item.ProdutoID) {
			return apperror.NewValidation("produto is required").
				WithDetail("field", "itens").
				WithDetail("item", i+1)
		}
		if item.Quantidade <= 0 {
			return apperror.NewValidation("quantidade must be positive").
				WithDetail("field", "itens").
				WithDetail("item", i+1)
		}
		if item.PrecoUnitario.IsNegative() {
			return apperror.NewValidation("preco_unitario must not be negative").
				WithDetail("field", "itens").
				WithDetail("item", i+1)
		}
	}
	return nil
}
