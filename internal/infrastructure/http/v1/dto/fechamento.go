package dto

import (
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/fechamento"
)

// FecharDiaRequest for running the daily settlement of a seller.
type FecharDiaRequest struct {
	VendedorID string `json:"vendedor_id" binding:"required"`
	// Data is the settlement day in YYYY-MM-DD. Empty means today.
	Data string `json:"data"`
}

// FecharDiaResponse wraps the settlement result.
type FecharDiaResponse struct {
	Success         bool                   `json:"success"`
	Fechamento      *fechamento.Fechamento `json:"fechamento"`
	Totais          fechamento.TotaisVenda `json:"totais"`
	ComissaoPercent string                 `json:"comissao_percent"`
}
