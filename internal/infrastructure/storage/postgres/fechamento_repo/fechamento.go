// Package fechamento_repo provides the PostgreSQL implementation of
// fechamento.Repository together with the sales aggregation and kit
// resolution collaborators.
package fechamento_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/fechamento"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
)

const (
	fechamentosTable = "fechamentos"
	vendedoresTable  = "vendedores"
)

var fechamentoColumns = []string{
	"id", "vendedor_id", "empresa_id", "data",
	"total", "total_pix", "total_cartao", "total_dinheiro",
	"comissao_percent", "comissao_calculada",
	"criado_em", "atualizado_em",
}

// FechamentoRepo implements fechamento.Repository.
type FechamentoRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewFechamentoRepo creates a new settlement repository.
func NewFechamentoRepo(txm *postgres.TxManager) *FechamentoRepo {
	return &FechamentoRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ fechamento.Repository = (*FechamentoRepo)(nil)

// GetVendedor returns a seller scoped to one company.
func (r *FechamentoRepo) GetVendedor(ctx context.Context, empresaID, vendedorID id.ID) (*fechamento.Vendedor, error) {
	q := r.builder.Select("id", "empresa_id", "nome", "comissao_padrao").
		From(vendedoresTable).
		Where(squirrel.Eq{"id": vendedorID, "empresa_id": empresaID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v fechamento.Vendedor
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("vendedor", vendedorID)
		}
		return nil, fmt.Errorf("get vendedor: %w", err)
	}

	return &v, nil
}

// Upsert writes the settlement as a single constrained statement, so a retry
// after a partial failure converges to exactly one row per (vendedor, data).
func (r *FechamentoRepo) Upsert(ctx context.Context, f *fechamento.Fechamento) error {
	sql := `
		INSERT INTO fechamentos (
			id, vendedor_id, empresa_id, data,
			total, total_pix, total_cartao, total_dinheiro,
			comissao_percent, comissao_calculada,
			criado_em, atualizado_em
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (vendedor_id, data) DO UPDATE SET
			total = EXCLUDED.total,
			total_pix = EXCLUDED.total_pix,
			total_cartao = EXCLUDED.total_cartao,
			total_dinheiro = EXCLUDED.total_dinheiro,
			comissao_percent = EXCLUDED.comissao_percent,
			comissao_calculada = EXCLUDED.comissao_calculada,
			atualizado_em = EXCLUDED.atualizado_em
	`

	querier := r.txm.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		f.ID, f.VendedorID, f.EmpresaID, f.Data,
		f.Total, f.TotalPix, f.TotalCartao, f.TotalDinheiro,
		f.ComissaoPercent, f.ComissaoCalculada,
		f.CriadoEm, f.AtualizadoEm,
	)
	if err != nil {
		return fmt.Errorf("upsert fechamento: %w", err)
	}

	return nil
}

// GetByVendedorData returns the settlement for one seller and day.
func (r *FechamentoRepo) GetByVendedorData(ctx context.Context, vendedorID id.ID, data time.Time) (*fechamento.Fechamento, error) {
	q := r.builder.Select(fechamentoColumns...).
		From(fechamentosTable).
		Where(squirrel.Eq{"vendedor_id": vendedorID, "data": data})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var f fechamento.Fechamento
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &f, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("fechamento", vendedorID)
		}
		return nil, fmt.Errorf("get fechamento: %w", err)
	}

	return &f, nil
}

// ListByVendedor returns settlements for a seller in a date range.
func (r *FechamentoRepo) ListByVendedor(ctx context.Context, vendedorID id.ID, de, ate time.Time) ([]*fechamento.Fechamento, error) {
	q := r.builder.Select(fechamentoColumns...).
		From(fechamentosTable).
		Where(squirrel.Eq{"vendedor_id": vendedorID}).
		Where(squirrel.GtOrEq{"data": de}).
		Where(squirrel.LtOrEq{"data": ate}).
		OrderBy("data DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*fechamento.Fechamento
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select fechamentos: %w", err)
	}

	return out, nil
}

// --- Collaborators ---

// VendasAggregator implements fechamento.SalesAggregator by summing the
// vendas table per payment method for one seller-local day.
type VendasAggregator struct {
	txm *postgres.TxManager
}

// NewVendasAggregator creates the sales aggregation collaborator.
func NewVendasAggregator(txm *postgres.TxManager) *VendasAggregator {
	return &VendasAggregator{txm: txm}
}

var _ fechamento.SalesAggregator = (*VendasAggregator)(nil)

// TotaisDoDia returns the four totals for a seller and day, zeros when no
// sales exist.
func (a *VendasAggregator) TotaisDoDia(ctx context.Context, vendedorID id.ID, data time.Time) (fechamento.TotaisVenda, error) {
	sql := `
		SELECT
			COALESCE(SUM(total), 0) AS total,
			COALESCE(SUM(total) FILTER (WHERE metodo_pagamento = 'pix'), 0) AS total_pix,
			COALESCE(SUM(total) FILTER (WHERE metodo_pagamento IN ('debito', 'credito')), 0) AS total_cartao,
			COALESCE(SUM(total) FILTER (WHERE metodo_pagamento = 'dinheiro'), 0) AS total_dinheiro
		FROM vendas
		WHERE vendedor_id = $1
		  AND data_venda >= $2
		  AND data_venda < $2 + INTERVAL '1 day'
	`

	var row struct {
		Total         types.Money `db:"total"`
		TotalPix      types.Money `db:"total_pix"`
		TotalCartao   types.Money `db:"total_cartao"`
		TotalDinheiro types.Money `db:"total_dinheiro"`
	}

	querier := a.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, vendedorID, data); err != nil {
		return fechamento.TotaisVenda{}, fmt.Errorf("aggregate vendas: %w", err)
	}

	return fechamento.TotaisVenda{
		Total:         row.Total,
		TotalPix:      row.TotalPix,
		TotalCartao:   row.TotalCartao,
		TotalDinheiro: row.TotalDinheiro,
	}, nil
}

// KitRepo implements fechamento.KitResolver against the kit assignment table.
// A kit applies to exactly the settlement date.
type KitRepo struct {
	txm *postgres.TxManager
}

// NewKitRepo creates the kit resolution collaborator.
func NewKitRepo(txm *postgres.TxManager) *KitRepo {
	return &KitRepo{txm: txm}
}

var _ fechamento.KitResolver = (*KitRepo)(nil)

// ComissaoDoKit returns the commission rate of the kit assigned to the seller
// for the given day, when one exists.
func (r *KitRepo) ComissaoDoKit(ctx context.Context, vendedorID id.ID, data time.Time) (types.Money, bool, error) {
	sql := `
		SELECT k.comissao_percent
		FROM kits_atribuidos ka
		JOIN kits k ON k.id = ka.kit_id
		WHERE ka.vendedor_id = $1 AND ka.data = $2
		ORDER BY ka.criado_em DESC
		LIMIT 1
	`

	var percent types.Money
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &percent, sql, vendedorID, data); err != nil {
		if pgxscan.NotFound(err) {
			return types.Zero(), false, nil
		}
		return types.Zero(), false, fmt.Errorf("get kit comissao: %w", err)
	}

	return percent, true, nil
}
