package caixa

import (
	"context"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
)

// Repository defines persistence operations for registers and movements.
type Repository interface {
	// Create inserts a new register. The implementation must enforce the
	// one-open-register-per-(escopo, usuario, day) rule with a uniqueness
	// constraint and report violations as apperror.NewConflict.
	Create(ctx context.Context, cx *Caixa) error

	// GetByID returns a register or apperror.NewNotFound.
	GetByID(ctx context.Context, caixaID id.ID) (*Caixa, error)

	// GetForUpdate returns a register with a row lock, or apperror.NewNotFound.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, caixaID id.ID) (*Caixa, error)

	// Update persists status, saldo_fechamento, fechado_em and observacao.
	Update(ctx context.Context, cx *Caixa) error

	// CreateMovimentacao inserts a movement if and only if the target register
	// is still aberto, as a single conditional statement. Returns false when
	// the register was not open at insert time.
	CreateMovimentacao(ctx context.Context, mov *Movimentacao) (bool, error)

	// ListMovimentacoes returns all movements of a register ordered by creation.
	ListMovimentacoes(ctx context.Context, caixaID id.ID) ([]Movimentacao, error)

	// List returns the registers of one owning user, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Caixa, error)
}

// ListFilter restricts register listings.
type ListFilter struct {
	UsuarioID id.ID
	Escopo    *Escopo
	Status    *Status
	DiaDe     *time.Time
	DiaAte    *time.Time
	Limit     int
	Offset    int
}
