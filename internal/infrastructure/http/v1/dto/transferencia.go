package dto

import (
	"github.com/shopspring/decimal"
)

// TransferenciaItemRequest is one product line of a transfer request.
type TransferenciaItemRequest struct {
	ProdutoID     string          `json:"produto_id" binding:"required"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
}

// CriarTransferenciaRequest for creating a transfer.
// EmpresaID is optional; when present it must match the authenticated company.
type CriarTransferenciaRequest struct {
	EmpresaID  string                     `json:"empresa_id"`
	VendedorID string                     `json:"vendedor_id" binding:"required"`
	Observacao string                     `json:"observacao"`
	Itens      []TransferenciaItemRequest `json:"itens"`
}
