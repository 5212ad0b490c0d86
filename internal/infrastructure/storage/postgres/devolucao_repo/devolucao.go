// Package devolucao_repo provides the PostgreSQL implementation of
// devolucao.Repository.
package devolucao_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/devolucao"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
)

const (
	devolucoesTable = "devolucoes"
	itensTable      = "devolucao_itens"
)

var devolucaoColumns = []string{
	"id", "vendedor_id", "empresa_id", "status",
	"total_itens", "observacao", "motivo", "criado_em", "decidido_em",
}

var itemColumns = []string{
	"id", "devolucao_id", "produto_id", "quantidade",
}

// DevolucaoRepo implements devolucao.Repository.
type DevolucaoRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewDevolucaoRepo creates a new return repository.
func NewDevolucaoRepo(txm *postgres.TxManager) *DevolucaoRepo {
	return &DevolucaoRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ devolucao.Repository = (*DevolucaoRepo)(nil)

// Create inserts the return header and all items. Caller runs this inside a
// transaction so header and items commit together.
func (r *DevolucaoRepo) Create(ctx context.Context, d *devolucao.Devolucao) error {
	q := r.builder.Insert(devolucoesTable).
		Columns(devolucaoColumns...).
		Values(d.ID, d.VendedorID, d.EmpresaID, d.Status,
			d.TotalItens, d.Observacao, d.Motivo, d.CriadoEm, d.DecididoEm)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert devolucao: %w", err)
	}

	iq := r.builder.Insert(itensTable).Columns(itemColumns...)
	for _, item := range d.Itens {
		iq = iq.Values(item.ID, d.ID, item.ProdutoID, item.Quantidade)
	}

	sql, args, err = iq.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert devolucao itens: %w", err)
	}

	return nil
}

// GetByID returns a return with its items.
func (r *DevolucaoRepo) GetByID(ctx context.Context, devolucaoID id.ID) (*devolucao.Devolucao, error) {
	return r.get(ctx, devolucaoID, false)
}

// GetForUpdate returns a return with its items, locking the header row.
func (r *DevolucaoRepo) GetForUpdate(ctx context.Context, devolucaoID id.ID) (*devolucao.Devolucao, error) {
	return r.get(ctx, devolucaoID, true)
}

func (r *DevolucaoRepo) get(ctx context.Context, devolucaoID id.ID, forUpdate bool) (*devolucao.Devolucao, error) {
	q := r.builder.Select(devolucaoColumns...).
		From(devolucoesTable).
		Where(squirrel.Eq{"id": devolucaoID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d devolucao.Devolucao
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("devolucao", devolucaoID)
		}
		return nil, fmt.Errorf("get devolucao: %w", err)
	}

	itens, err := r.loadItens(ctx, devolucaoID)
	if err != nil {
		return nil, err
	}
	d.Itens = itens

	return &d, nil
}

func (r *DevolucaoRepo) loadItens(ctx context.Context, devolucaoID id.ID) ([]devolucao.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itensTable).
		Where(squirrel.Eq{"devolucao_id": devolucaoID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var itens []devolucao.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &itens, sql, args...); err != nil {
		return nil, fmt.Errorf("select devolucao itens: %w", err)
	}

	return itens, nil
}

// UpdateStatus flips the status and stores the decision reason, only when the
// row still holds the expected current status.
func (r *DevolucaoRepo) UpdateStatus(ctx context.Context, devolucaoID id.ID, de, para devolucao.Status, motivo string, decididoEm time.Time) (bool, error) {
	q := r.builder.Update(devolucoesTable).
		Set("status", para).
		Set("motivo", motivo).
		Set("decidido_em", decididoEm).
		Where(squirrel.Eq{"id": devolucaoID, "status": de})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update devolucao status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// List returns returns matching the filter, newest first, without items.
func (r *DevolucaoRepo) List(ctx context.Context, filter devolucao.ListFilter) ([]*devolucao.Devolucao, error) {
	q := r.builder.Select(devolucaoColumns...).
		From(devolucoesTable).
		OrderBy("criado_em DESC", "id DESC")

	if filter.EmpresaID != nil {
		q = q.Where(squirrel.Eq{"empresa_id": *filter.EmpresaID})
	}
	if filter.VendedorID != nil {
		q = q.Where(squirrel.Eq{"vendedor_id": *filter.VendedorID})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
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

	var out []*devolucao.Devolucao
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select devolucoes: %w", err)
	}

	return out, nil
}
