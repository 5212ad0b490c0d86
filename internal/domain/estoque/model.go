// Package estoque provides per-seller and per-company stock balances and the
// append-only estoque_logs audit trail.
package estoque

import (
	"encoding/json"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
)

// SaldoVendedor is the on-hand quantity of one product held by one seller.
type SaldoVendedor struct {
	VendedorID   id.ID     `db:"vendedor_id" json:"vendedor_id"`
	ProdutoID    id.ID     `db:"produto_id" json:"produto_id"`
	Quantidade   int       `db:"quantidade" json:"quantidade"`
	AtualizadoEm time.Time `db:"atualizado_em" json:"atualizado_em"`
}

// SaldoEmpresa is the on-hand quantity of one product held by a company.
type SaldoEmpresa struct {
	EmpresaID    id.ID     `db:"empresa_id" json:"empresa_id"`
	ProdutoID    id.ID     `db:"produto_id" json:"produto_id"`
	Quantidade   int       `db:"quantidade" json:"quantidade"`
	AtualizadoEm time.Time `db:"atualizado_em" json:"atualizado_em"`
}

// Item is a (product, quantity) pair for batch stock mutations.
type Item struct {
	ProdutoID  id.ID
	Quantidade int
}

// TipoLog classifies an audit entry.
type TipoLog string

const (
	LogDevolucaoAceita     TipoLog = "devolucao_aceita"
	LogDevolucaoRecusada   TipoLog = "devolucao_recusada"
	LogTransferenciaAceita TipoLog = "transferencia_aceita"
	LogTransferenciaNegada TipoLog = "transferencia_recusada"
)

// Log is one append-only estoque_logs entry. It is written in the same
// transaction as the state transition it describes, never as a follow-up call.
type Log struct {
	ID           id.ID           `db:"id" json:"id"`
	Tipo         TipoLog         `db:"tipo" json:"tipo"`
	EmpresaID    *id.ID          `db:"empresa_id" json:"empresa_id,omitempty"`
	VendedorID   *id.ID          `db:"vendedor_id" json:"vendedor_id,omitempty"`
	ReferenciaID id.ID           `db:"referencia_id" json:"referencia_id"`
	Quantidade   int             `db:"quantidade" json:"quantidade"`
	AtorID       id.ID           `db:"ator_id" json:"ator_id"`
	Observacao   string          `db:"observacao" json:"observacao,omitempty"`
	Payload      json.RawMessage `db:"payload" json:"payload,omitempty"`
	CriadoEm     time.Time       `db:"criado_em" json:"criado_em"`
}
