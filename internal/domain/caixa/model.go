// Package caixa provides the cash register (caixa) aggregate:
// register lifecycle, immutable movements and the derived balance summary.
package caixa

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

// Escopo identifies which kind of operation a register belongs to.
type Escopo string

const (
	EscopoEmpresa  Escopo = "empresa"
	EscopoVendedor Escopo = "vendedor"
	EscopoSolo     Escopo = "solo"
)

// Valid reports whether the scope is one of the closed set.
func (e Escopo) Valid() bool {
	switch e {
	case EscopoEmpresa, EscopoVendedor, EscopoSolo:
		return true
	}
	return false
}

// Status is the register lifecycle state. Fechado is terminal.
type Status string

const (
	StatusAberto  Status = "aberto"
	StatusFechado Status = "fechado"
)

// TipoMovimentacao classifies a movement as inflow or outflow.
type TipoMovimentacao string

const (
	TipoEntrada TipoMovimentacao = "entrada"
	TipoSaida   TipoMovimentacao = "saida"
)

// Valid reports whether the movement kind is one of the closed set.
func (t TipoMovimentacao) Valid() bool {
	return t == TipoEntrada || t == TipoSaida
}

// MetodoPagamento is the payment method of a movement.
type MetodoPagamento string

const (
	MetodoDinheiro MetodoPagamento = "dinheiro"
	MetodoPix      MetodoPagamento = "pix"
	MetodoDebito   MetodoPagamento = "debito"
	MetodoCredito  MetodoPagamento = "credito"
	MetodoOutro    MetodoPagamento = "outro"
)

// Valid reports whether the payment method is one of the closed set.
func (m MetodoPagamento) Valid() bool {
	switch m {
	case MetodoDinheiro, MetodoPix, MetodoDebito, MetodoCredito, MetodoOutro:
		return true
	}
	return false
}

// Caixa is one cash register instance for a scope and owning user.
// At most one register may be aberto per (escopo, usuario, calendar day);
// the partial unique index on the caixas table backs that invariant.
type Caixa struct {
	ID         id.ID  `db:"id" json:"id"`
	Escopo     Escopo `db:"escopo" json:"escopo"`
	EmpresaID  *id.ID `db:"empresa_id" json:"empresa_id,omitempty"`
	VendedorID *id.ID `db:"vendedor_id" json:"vendedor_id,omitempty"`
	UsuarioID  id.ID  `db:"usuario_id" json:"usuario_id"`

	SaldoInicial    types.Money  `db:"saldo_inicial" json:"saldo_inicial"`
	SaldoFechamento *types.Money `db:"saldo_fechamento" json:"saldo_fechamento,omitempty"`

	Status Status `db:"status" json:"status"`

	AbertoEm time.Time `db:"aberto_em" json:"aberto_em"`
	// DiaAbertura is the owner-local calendar day of AbertoEm, stored as a
	// date so the one-open-register-per-day uniqueness can be constrained.
	DiaAbertura time.Time  `db:"dia_abertura" json:"-"`
	FechadoEm   *time.Time `db:"fechado_em" json:"fechado_em,omitempty"`

	Observacao string `db:"observacao" json:"observacao,omitempty"`
}

// Aberto reports whether the register still accepts movements.
func (c *Caixa) Aberto() bool {
	return c.Status == StatusAberto
}

// Validate implements invariant checks for a register about to be persisted.
func (c *Caixa) Validate(ctx context.Context) error {
	if !c.Escopo.Valid() {
		return apperror.NewValidation("invalid escopo").
			WithDetail("field", "escopo").
			WithDetail("value", string(c.Escopo))
	}
	if id.IsNil(c.UsuarioID) {
		return apperror.NewValidation("usuario is required").
			WithDetail("field", "usuario_id")
	}
	if c.SaldoInicial.IsNegative() {
		return apperror.NewValidation("saldo_inicial must not be negative").
			WithDetail("field", "saldo_inicial")
	}
	if c.Escopo == EscopoEmpresa && c.EmpresaID == nil {
		return apperror.NewValidation("empresa is required for escopo empresa").
			WithDetail("field", "empresa_id")
	}
	if c.Escopo == EscopoVendedor && c.VendedorID == nil {
		return apperror.NewValidation("vendedor is required for escopo vendedor").
			WithDetail("field", "vendedor_id")
	}
	return nil
}

// Movimentacao is an immutable financial event against exactly one register.
// Kind, method and amount are fixed at creation; there is no update or
// delete path.
type Movimentacao struct {
	ID      id.ID            `db:"id" json:"id"`
	CaixaID id.ID            `db:"caixa_id" json:"caixa_id"`
	Tipo    TipoMovimentacao `db:"tipo" json:"tipo"`
	Metodo  MetodoPagamento  `db:"metodo_pagamento" json:"metodo_pagamento"`

	Valor     types.Money `db:"valor" json:"valor"`
	Descricao string      `db:"descricao" json:"descricao"`

	// Optional references to the originating business event.
	VendaID         *id.ID `db:"venda_id" json:"venda_id,omitempty"`
	VendaServicoID  *id.ID `db:"venda_servico_id" json:"venda_servico_id,omitempty"`
	DevolucaoID     *id.ID `db:"devolucao_id" json:"devolucao_id,omitempty"`
	TransferenciaID *id.ID `db:"transferencia_id" json:"transferencia_id,omitempty"`

	CriadoPor id.ID     `db:"criado_por" json:"criado_por"`
	CriadoEm  time.Time `db:"criado_em" json:"criado_em"`
}

// Validate implements invariant checks for a movement about to be persisted.
func (m *Movimentacao) Validate(ctx context.Context) error {
	if id.IsNil(m.CaixaID) {
		return apperror.NewValidation("caixa is required").
			WithDetail("field", "caixa_id")
	}
	if !m.Tipo.Valid() {
		return apperror.NewValidation("invalid tipo").
			WithDetail("field", "tipo").
			WithDetail("value", string(m.Tipo))
	}
	if !m.Metodo.Valid() {
		return apperror.NewValidation("invalid metodo_pagamento").
			WithDetail("field", "metodo_pagamento").
			WithDetail("value", string(m.Metodo))
	}
	if !m.Valor.IsPositive() {
		return apperror.NewValidation("valor must be positive").
			WithDetail("field", "valor")
	}
	if m.Descricao == "" {
		return apperror.NewValidation("descricao is required").
			WithDetail("field", "descricao")
	}
	return nil
}
