// Package caixa_repo provides the PostgreSQL implementation of caixa.Repository.
package caixa_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/caixa"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
)

const (
	caixasTable        = "caixas"
	movimentacoesTable = "caixa_movimentacoes"

	// Partial unique index: at most one caixa aberto per (escopo, usuario, dia).
	caixaAbertoConstraint = "caixas_aberto_por_dia"
)

var caixaColumns = []string{
	"id", "escopo", "empresa_id", "vendedor_id", "usuario_id",
	"saldo_inicial", "saldo_fechamento", "status",
	"aberto_em", "dia_abertura", "fechado_em", "observacao",
}

var movimentacaoColumns = []string{
	"id", "caixa_id", "tipo", "metodo_pagamento", "valor", "descricao",
	"venda_id", "venda_servico_id", "devolucao_id", "transferencia_id",
	"criado_por", "criado_em",
}

// CaixaRepo implements caixa.Repository.
type CaixaRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCaixaRepo creates a new cash register repository.
func NewCaixaRepo(txm *postgres.TxManager) *CaixaRepo {
	return &CaixaRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ caixa.Repository = (*CaixaRepo)(nil)

// Create inserts a new register. The partial unique index backs the
// one-open-register-per-day rule; its violation surfaces as a conflict.
func (r *CaixaRepo) Create(ctx context.Context, cx *caixa.Caixa) error {
	q := r.builder.Insert(caixasTable).
		Columns(caixaColumns...).
		Values(
			cx.ID, cx.Escopo, cx.EmpresaID, cx.VendedorID, cx.UsuarioID,
			cx.SaldoInicial, cx.SaldoFechamento, cx.Status,
			cx.AbertoEm, cx.DiaAbertura, cx.FechadoEm, cx.Observacao,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, caixaAbertoConstraint) {
			return apperror.NewConflict("caixa already open for this day").
				WithDetail("escopo", cx.Escopo).
				WithDetail("usuario_id", cx.UsuarioID)
		}
		return fmt.Errorf("insert caixa: %w", err)
	}

	return nil
}

// GetByID returns a register or a not-found error.
func (r *CaixaRepo) GetByID(ctx context.Context, caixaID id.ID) (*caixa.Caixa, error) {
	q := r.builder.Select(caixaColumns...).
		From(caixasTable).
		Where(squirrel.Eq{"id": caixaID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var cx caixa.Caixa
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &cx, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("caixa", caixaID)
		}
		return nil, fmt.Errorf("get caixa: %w", err)
	}

	return &cx, nil
}

// GetForUpdate returns a register with a row lock.
func (r *CaixaRepo) GetForUpdate(ctx context.Context, caixaID id.ID) (*caixa.Caixa, error) {
	sql := `
		SELECT id, escopo, empresa_id, vendedor_id, usuario_id,
		       saldo_inicial, saldo_fechamento, status,
		       aberto_em, dia_abertura, fechado_em, observacao
		FROM caixas
		WHERE id = $1
		FOR UPDATE
	`

	var cx caixa.Caixa
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &cx, sql, caixaID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("caixa", caixaID)
		}
		return nil, fmt.Errorf("get caixa for update: %w", err)
	}

	return &cx, nil
}

// Update persists the mutable register fields.
func (r *CaixaRepo) Update(ctx context.Context, cx *caixa.Caixa) error {
	q := r.builder.Update(caixasTable).
		Set("status", cx.Status).
		Set("saldo_fechamento", cx.SaldoFechamento).
		Set("fechado_em", cx.FechadoEm).
		Set("observacao", cx.Observacao).
		Where(squirrel.Eq{"id": cx.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update caixa: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("caixa", cx.ID)
	}

	return nil
}

// CreateMovimentacao inserts a movement only while the register is aberto.
// The status check and the insert are one statement, so a concurrent close
// cannot slip between them.
func (r *CaixaRepo) CreateMovimentacao(ctx context.Context, mov *caixa.Movimentacao) (bool, error) {
	sql := `
		INSERT INTO caixa_movimentacoes (
			id, caixa_id, tipo, metodo_pagamento, valor, descricao,
			venda_id, venda_servico_id, devolucao_id, transferencia_id,
			criado_por, criado_em
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		WHERE EXISTS (
			SELECT 1 FROM caixas WHERE id = $2 AND status = 'aberto'
		)
	`

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql,
		mov.ID, mov.CaixaID, mov.Tipo, mov.Metodo, mov.Valor, mov.Descricao,
		mov.VendaID, mov.VendaServicoID, mov.DevolucaoID, mov.TransferenciaID,
		mov.CriadoPor, mov.CriadoEm,
	)
	if err != nil {
		return false, fmt.Errorf("insert movimentacao: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListMovimentacoes returns all movements of a register, oldest first.
func (r *CaixaRepo) ListMovimentacoes(ctx context.Context, caixaID id.ID) ([]caixa.Movimentacao, error) {
	q := r.builder.Select(movimentacaoColumns...).
		From(movimentacoesTable).
		Where(squirrel.Eq{"caixa_id": caixaID}).
		OrderBy("criado_em", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movs []caixa.Movimentacao
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movs, sql, args...); err != nil {
		return nil, fmt.Errorf("select movimentacoes: %w", err)
	}

	return movs, nil
}

// List returns registers matching the filter, newest first.
func (r *CaixaRepo) List(ctx context.Context, filter caixa.ListFilter) ([]*caixa.Caixa, error) {
	q := r.builder.Select(caixaColumns...).
		From(caixasTable).
		Where(squirrel.Eq{"usuario_id": filter.UsuarioID})

	if filter.Escopo != nil {
		q = q.Where(squirrel.Eq{"escopo": *filter.Escopo})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.DiaDe != nil {
		q = q.Where(squirrel.GtOrEq{"dia_abertura": *filter.DiaDe})
	}
	if filter.DiaAte != nil {
		q = q.Where(squirrel.LtOrEq{"dia_abertura": *filter.DiaAte})
	}

	q = q.OrderBy("aberto_em DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var caixas []*caixa.Caixa
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &caixas, sql, args...); err != nil {
		return nil, fmt.Errorf("select caixas: %w", err)
	}

	return caixas, nil
}
