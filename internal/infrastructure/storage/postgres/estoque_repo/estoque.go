// Package estoque_repo provides the PostgreSQL implementation of
// estoque.Repository: balance upserts, row-locked reads and the
// estoque_logs audit trail with zstd-compressed payloads.
package estoque_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
)

const (
	estoqueVendedorTable = "estoque_vendedor"
	estoqueEmpresaTable  = "estoque_empresa"
	estoqueLogsTable     = "estoque_logs"
)

// CompressionAlgo specifies the compression algorithm of a stored payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// EstoqueRepo implements estoque.Repository.
type EstoqueRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	// payloads above this size are stored zstd-compressed
	compressThreshold int
}

// NewEstoqueRepo creates a new stock repository.
func NewEstoqueRepo(txm *postgres.TxManager) (*EstoqueRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &EstoqueRepo{
		txm:               txm,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 4 * 1024,
	}, nil
}

var _ estoque.Repository = (*EstoqueRepo)(nil)

// GetSaldoVendedor returns the current seller balance, zero when absent.
func (r *EstoqueRepo) GetSaldoVendedor(ctx context.Context, vendedorID, produtoID id.ID) (estoque.SaldoVendedor, error) {
	return r.getSaldoVendedor(ctx, vendedorID, produtoID, false)
}

// GetSaldoVendedorForUpdate returns the seller balance with a row lock.
// A missing row yields a zero balance without a lock; the caller's
// availability check fails on zero anyway.
func (r *EstoqueRepo) GetSaldoVendedorForUpdate(ctx context.Context, vendedorID, produtoID id.ID) (estoque.SaldoVendedor, error) {
	return r.getSaldoVendedor(ctx, vendedorID, produtoID, true)
}

func (r *EstoqueRepo) getSaldoVendedor(ctx context.Context, vendedorID, produtoID id.ID, forUpdate bool) (estoque.SaldoVendedor, error) {
	q := r.builder.Select("vendedor_id", "produto_id", "quantidade", "atualizado_em").
		From(estoqueVendedorTable).
		Where(squirrel.Eq{"vendedor_id": vendedorID, "produto_id": produtoID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return estoque.SaldoVendedor{}, fmt.Errorf("build query: %w", err)
	}

	var s estoque.SaldoVendedor
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return estoque.SaldoVendedor{
				VendedorID: vendedorID,
				ProdutoID:  produtoID,
				Quantidade: 0,
			}, nil
		}
		return estoque.SaldoVendedor{}, fmt.Errorf("get saldo vendedor: %w", err)
	}

	return s, nil
}

// IncrementVendedor adds delta to a seller balance, inserting when absent.
func (r *EstoqueRepo) IncrementVendedor(ctx context.Context, vendedorID, produtoID id.ID, delta int) error {
	sql := `
		INSERT INTO estoque_vendedor (vendedor_id, produto_id, quantidade, atualizado_em)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (vendedor_id, produto_id) DO UPDATE SET
			quantidade = estoque_vendedor.quantidade + EXCLUDED.quantidade,
			atualizado_em = now()
	`

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, vendedorID, produtoID, delta); err != nil {
		return fmt.Errorf("increment saldo vendedor: %w", err)
	}

	return nil
}

// IncrementEmpresa adds delta to a company balance, inserting when absent.
func (r *EstoqueRepo) IncrementEmpresa(ctx context.Context, empresaID, produtoID id.ID, delta int) error {
	sql := `
		INSERT INTO estoque_empresa (empresa_id, produto_id, quantidade, atualizado_em)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (empresa_id, produto_id) DO UPDATE SET
			quantidade = estoque_empresa.quantidade + EXCLUDED.quantidade,
			atualizado_em = now()
	`

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, empresaID, produtoID, delta); err != nil {
		return fmt.Errorf("increment saldo empresa: %w", err)
	}

	return nil
}

// ListSaldosVendedor returns all non-zero balances of one seller.
func (r *EstoqueRepo) ListSaldosVendedor(ctx context.Context, vendedorID id.ID) ([]estoque.SaldoVendedor, error) {
	q := r.builder.Select("vendedor_id", "produto_id", "quantidade", "atualizado_em").
		From(estoqueVendedorTable).
		Where(squirrel.Eq{"vendedor_id": vendedorID}).
		Where(squirrel.NotEq{"quantidade": 0}).
		OrderBy("produto_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []estoque.SaldoVendedor
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select saldos vendedor: %w", err)
	}

	return out, nil
}

// ListSaldosEmpresa returns all non-zero balances of one company.
func (r *EstoqueRepo) ListSaldosEmpresa(ctx context.Context, empresaID id.ID) ([]estoque.SaldoEmpresa, error) {
	q := r.builder.Select("empresa_id", "produto_id", "quantidade", "atualizado_em").
		From(estoqueEmpresaTable).
		Where(squirrel.Eq{"empresa_id": empresaID}).
		Where(squirrel.NotEq{"quantidade": 0}).
		OrderBy("produto_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []estoque.SaldoEmpresa
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select saldos empresa: %w", err)
	}

	return out, nil
}

// packPayload decides the storage form of an audit payload. Small payloads
// stay raw in the payload column; larger ones move to the payload_compressed
// BYTEA column as a zstd blob, with the algo column recording which.
func (r *EstoqueRepo) packPayload(in []byte) (raw, compressed []byte, algo CompressionAlgo) {
	if len(in) > r.compressThreshold {
		return nil, r.encoder.EncodeAll(in, nil), CompressionZstd
	}
	return in, nil, CompressionNone
}

// unpackPayload restores the payload from its stored form.
func (r *EstoqueRepo) unpackPayload(raw, compressed []byte, algo CompressionAlgo) ([]byte, error) {
	if algo == CompressionZstd && len(compressed) > 0 {
		return r.decoder.DecodeAll(compressed, nil)
	}
	return raw, nil
}

// CreateLog appends an audit entry, compressing large payloads with zstd.
func (r *EstoqueRepo) CreateLog(ctx context.Context, entry *estoque.Log) error {
	payload, compressed, algo := r.packPayload(entry.Payload)

	sql := `
		INSERT INTO estoque_logs (
			id, tipo, empresa_id, vendedor_id, referencia_id,
			quantidade, ator_id, observacao,
			payload, payload_compressed, compression_algo, criado_em
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	querier := r.txm.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		entry.ID, entry.Tipo, entry.EmpresaID, entry.VendedorID, entry.ReferenciaID,
		entry.Quantidade, entry.AtorID, entry.Observacao,
		payload, compressed, algo, entry.CriadoEm,
	)
	if err != nil {
		return fmt.Errorf("insert estoque log: %w", err)
	}

	return nil
}

// ListLogs returns audit entries for one reference, oldest first, with
// payloads decompressed.
func (r *EstoqueRepo) ListLogs(ctx context.Context, referenciaID id.ID) ([]estoque.Log, error) {
	sql := `
		SELECT id, tipo, empresa_id, vendedor_id, referencia_id,
			   quantidade, ator_id, observacao,
			   payload, payload_compressed, compression_algo, criado_em
		FROM estoque_logs
		WHERE referencia_id = $1
		ORDER BY criado_em, id
	`

	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, referenciaID)
	if err != nil {
		return nil, fmt.Errorf("query estoque logs: %w", err)
	}
	defer rows.Close()

	var entries []estoque.Log
	for rows.Next() {
		var (
			e          estoque.Log
			payload    []byte
			compressed []byte
			algo       CompressionAlgo
			criadoEm   time.Time
		)
		err := rows.Scan(
			&e.ID, &e.Tipo, &e.EmpresaID, &e.VendedorID, &e.ReferenciaID,
			&e.Quantidade, &e.AtorID, &e.Observacao,
			&payload, &compressed, &algo, &criadoEm,
		)
		if err != nil {
			return nil, fmt.Errorf("scan estoque log: %w", err)
		}

		payload, err = r.unpackPayload(payload, compressed, algo)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}

		e.Payload = json.RawMessage(payload)
		e.CriadoEm = criadoEm
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
