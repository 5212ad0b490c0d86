package dto

import (
	"github.com/shopspring/decimal"
)

// AbrirCaixaRequest for opening a register.
type AbrirCaixaRequest struct {
	Escopo       string          `json:"escopo" binding:"required"`
	EmpresaID    *string         `json:"empresa_id"`
	VendedorID   *string         `json:"vendedor_id"`
	SaldoInicial decimal.Decimal `json:"saldo_inicial"`
	Observacao   string          `json:"observacao"`
	// Fuso is the caller's IANA time zone; the one-open-register-per-day
	// window is computed in it.
	Fuso string `json:"fuso"`
}

// MovimentacaoRequest for recording a movement against an open register.
type MovimentacaoRequest struct {
	CaixaID   string          `json:"caixa_id" binding:"required"`
	Tipo      string          `json:"tipo" binding:"required"`
	Metodo    string          `json:"metodo_pagamento" binding:"required"`
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao" binding:"required"`

	VendaID         *string `json:"venda_id"`
	VendaServicoID  *string `json:"venda_servico_id"`
	DevolucaoID     *string `json:"devolucao_id"`
	TransferenciaID *string `json:"transferencia_id"`
}

// FecharCaixaRequest for closing a register.
type FecharCaixaRequest struct {
	SaldoFechamento decimal.Decimal `json:"saldo_fechamento"`
}

// ObservacaoRequest for updating the register note.
type ObservacaoRequest struct {
	Observacao string `json:"observacao"`
}
