package caixa

import (
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

// TotaisMetodo holds inflow and outflow totals for one payment method.
type TotaisMetodo struct {
	Entradas types.Money `json:"entradas"`
	Saidas   types.Money `json:"saidas"`
}

// Resumo is the derived balance summary of a register.
// It is never stored; it is recomputed from the movement list on demand,
// so aggregation stays commutative over insertion order.
type Resumo struct {
	SaldoInicial  types.Money `json:"saldo_inicial"`
	TotalEntradas types.Money `json:"total_entradas"`
	TotalSaidas   types.Money `json:"total_saidas"`

	// SaldoTeorico = saldo_inicial + entradas - saidas.
	SaldoTeorico types.Money `json:"saldo_teorico"`

	// SaldoFechamento and Diferenca are present only for closed registers.
	SaldoFechamento *types.Money `json:"saldo_fechamento,omitempty"`
	Diferenca       *types.Money `json:"diferenca,omitempty"`

	PorMetodo map[MetodoPagamento]TotaisMetodo `json:"por_metodo"`
}

// CalcularResumo computes the balance summary for a register and its movements.
// Pure function: no side effects, no datastore access.
func CalcularResumo(cx *Caixa, movs []Movimentacao) Resumo {
	entradas := types.Zero()
	saidas := types.Zero()
	porMetodo := make(map[MetodoPagamento]TotaisMetodo)

	for _, m := range movs {
		totais := porMetodo[m.Metodo]
		switch m.Tipo {
		case TipoEntrada:
			entradas = entradas.Add(m.Valor)
			totais.Entradas = totais.Entradas.Add(m.Valor)
		case TipoSaida:
			saidas = saidas.Add(m.Valor)
			totais.Saidas = totais.Saidas.Add(m.Valor)
		}
		porMetodo[m.Metodo] = totais
	}

	resumo := Resumo{
		SaldoInicial:  cx.SaldoInicial,
		TotalEntradas: entradas,
		TotalSaidas:   saidas,
		SaldoTeorico:  cx.SaldoInicial.Add(entradas).Sub(saidas),
		PorMetodo:     porMetodo,
	}

	if cx.Status == StatusFechado && cx.SaldoFechamento != nil {
		fechamento := *cx.SaldoFechamento
		diferenca := fechamento.Sub(resumo.SaldoTeorico)
		resumo.SaldoFechamento = &fechamento
		resumo.Diferenca = &diferenca
	}

	return resumo
}
