// Package fechamento provides the daily settlement engine: per-seller sales
// totals and commission, upserted once per (vendedor, day).
package fechamento

import (
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

// Fechamento is the settlement record for one seller and one calendar day.
// Unique per (vendedor, data); recomputation overwrites in place.
type Fechamento struct {
	ID         id.ID     `db:"id" json:"id"`
	VendedorID id.ID     `db:"vendedor_id" json:"vendedor_id"`
	EmpresaID  id.ID     `db:"empresa_id" json:"empresa_id"`
	Data       time.Time `db:"data" json:"data"`

	Total         types.Money `db:"total" json:"total"`
	TotalPix      types.Money `db:"total_pix" json:"total_pix"`
	TotalCartao   types.Money `db:"total_cartao" json:"total_cartao"`
	TotalDinheiro types.Money `db:"total_dinheiro" json:"total_dinheiro"`

	ComissaoPercent   types.Money `db:"comissao_percent" json:"comissao_percent"`
	ComissaoCalculada types.Money `db:"comissao_calculada" json:"comissao_calculada"`

	CriadoEm     time.Time `db:"criado_em" json:"criado_em"`
	AtualizadoEm time.Time `db:"atualizado_em" json:"atualizado_em"`
}

// Vendedor is the seller projection the engine needs: tenant membership and
// the default commission rate used when no kit is assigned for the day.
type Vendedor struct {
	ID             id.ID       `db:"id" json:"id"`
	EmpresaID      id.ID       `db:"empresa_id" json:"empresa_id"`
	Nome           string      `db:"nome" json:"nome"`
	ComissaoPadrao types.Money `db:"comissao_padrao" json:"comissao_padrao"`
}

// TotaisVenda is the sales aggregation contract: four totals for one seller
// and one day, zero when no sales exist.
type TotaisVenda struct {
	Total         types.Money `json:"total"`
	TotalPix      types.Money `json:"total_pix"`
	TotalCartao   types.Money `json:"total_cartao"`
	TotalDinheiro types.Money `json:"total_dinheiro"`
}

// Resultado bundles the persisted settlement with the raw totals and the
// resolved commission rate.
type Resultado struct {
	Fechamento      *Fechamento `json:"fechamento"`
	Totais          TotaisVenda `json:"totais"`
	ComissaoPercent types.Money `json:"comissao_percent"`
}
