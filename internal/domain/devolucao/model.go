// Package devolucao provides the seller → company inventory return
// state machine. Stock mutation happens exactly once, on acceptance.
package devolucao

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
)

// Status is the return lifecycle state. Transitions are one-directional:
// aguardando_confirmacao → aceita | recusada, both terminal.
type Status string

const (
	StatusAguardandoConfirmacao Status = "aguardando_confirmacao"
	StatusAceita                Status = "aceita"
	StatusRecusada              Status = "recusada"
)

// Devolucao is a batch hand-back of products from a seller to a company.
type Devolucao struct {
	ID         id.ID  `db:"id" json:"id"`
	VendedorID id.ID  `db:"vendedor_id" json:"vendedor_id"`
	EmpresaID  id.ID  `db:"empresa_id" json:"empresa_id"`
	Status     Status `db:"status" json:"status"`

	TotalItens int    `db:"total_itens" json:"total_itens"`
	Observacao string `db:"observacao" json:"observacao,omitempty"`
	// Motivo stores the refusal reason; required on refusal, empty otherwise.
	Motivo string `db:"motivo" json:"motivo,omitempty"`

	CriadoEm   time.Time  `db:"criado_em" json:"criado_em"`
	DecididoEm *time.Time `db:"decidido_em" json:"decidido_em,omitempty"`

	Itens []Item `db:"-" json:"itens"`
}

// Item is one product line of a return.
type Item struct {
	ID          id.ID `db:"id" json:"id"`
	DevolucaoID id.ID `db:"devolucao_id" json:"-"`
	ProdutoID   id.ID `db:"produto_id" json:"produto_id"`
	Quantidade  int   `db:"quantidade" json:"quantidade"`
}

// Pendente reports whether the return still awaits a company decision.
func (d *Devolucao) Pendente() bool {
	return d.Status == StatusAguardandoConfirmacao
}

// Validate implements invariant checks for a return about to be persisted.
func (d *Devolucao) Validate(ctx context.Context) error {
	if id.IsNil(d.VendedorID) {
		return apperror.NewValidation("vendedor is required").
			WithDetail("field", "vendedor_id")
	}
	if id.IsNil(d.EmpresaID) {
		return apperror.NewValidation("empresa is required").
			WithDetail("field", "empresa_id")
	}
	if len(d.Itens) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "itens")
	}
	for i, item := range d.Itens {
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
	}
	return nil
}
