// Package transfer_repo provides the PostgreSQL implementation of
// transferencia.Repository.
package transfer_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/transferencia"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
)

const (
	transferenciasTable = "transferencias"
	itensTable          = "transferencia_itens"
)

var transferenciaColumns = []string{
	"id", "empresa_id", "vendedor_id", "status",
	"total_itens", "observacao", "criado_em", "decidido_em",
}

var itemColumns = []string{
	"id", "transferencia_id", "produto_id", "quantidade", "preco_unitario",
}

// TransferRepo implements transferencia.Repository.
type TransferRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txm *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ transferencia.Repository = (*TransferRepo)(nil)

// Create inserts the transfer header and all items. Caller runs this inside
// a transaction so header and items commit together.
func (r *TransferRepo) Create(ctx context.Context, t *transferencia.Transferencia) error {
	q := r.builder.Insert(transferenciasTable).
		Columns(transferenciaColumns...).
		Values(t.ID, t.EmpresaID, t.VendedorID, t.Status,
			t.TotalItens, t.Observacao, t.CriadoEm, t.DecididoEm)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transferencia: %w", err)
	}

	iq := r.builder.Insert(itensTable).Columns(itemColumns...)
	for _, item := range t.Itens {
		iq = iq.Values(item.ID, t.ID, item.ProdutoID, item.Quantidade, item.PrecoUnitario)
	}

	sql, args, err = iq.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transferencia itens: %w", err)
	}

	return nil
}

// GetByID returns a transfer with its items.
func (r *TransferRepo) GetByID(ctx context.Context, transferenciaID id.ID) (*transferencia.Transferencia, error) {
	return r.get(ctx, transferenciaID, false)
}

// GetForUpdate returns a transfer with its items, locking the header row.
func (r *TransferRepo) GetForUpdate(ctx context.Context, transferenciaID id.ID) (*transferencia.Transferencia, error) {
	return r.get(ctx, transferenciaID, true)
}

func (r *TransferRepo) get(ctx context.Context, transferenciaID id.ID, forUpdate bool) (*transferencia.Transferencia, error) {
	q := r.builder.Select(transferenciaColumns...).
		From(transferenciasTable).
		Where(squirrel.Eq{"id": transferenciaID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t transferencia.Transferencia
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transferencia", transferenciaID)
		}
		return nil, fmt.Errorf("get transferencia: %w", err)
	}

	itens, err := r.loadItens(ctx, transferenciaID)
	if err != nil {
		return nil, err
	}
	t.Itens = itens

	return &t, nil
}

func (r *TransferRepo) loadItens(ctx context.Context, transferenciaID id.ID) ([]transferencia.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itensTable).
		Where(squirrel.Eq{"transferencia_id": transferenciaID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var itens []transferencia.Item
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &itens, sql, args...); err != nil {
		return nil, fmt.Errorf("select transferencia itens: %w", err)
	}

	return itens, nil
}

// UpdateStatus flips the status only when the row still holds the expected
// current status. The WHERE clause is the guard: a concurrent transition that
// committed first leaves zero rows affected here.
func (r *TransferRepo) UpdateStatus(ctx context.Context, transferenciaID id.ID, de, para transferencia.Status, decididoEm time.Time) (bool, error) {
	q := r.builder.Update(transferenciasTable).
		Set("status", para).
		Set("decidido_em", decididoEm).
		Where(squirrel.Eq{"id": transferenciaID, "status": de})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update transferencia status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// List returns transfers matching the filter, newest first, without items.
func (r *TransferRepo) List(ctx context.Context, filter transferencia.ListFilter) ([]*transferencia.Transferencia, error) {
	q := r.builder.Select(transferenciaColumns...).
		From(transferenciasTable).
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

	var out []*transferencia.Transferencia
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select transferencias: %w", err)
	}

	return out, nil
}
