package fechamento

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/tx"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

// Service provides the daily settlement operations.
type Service struct {
	repo       Repository
	aggregator SalesAggregator
	kits       KitResolver
	txManager  tx.Manager
	agora      func() time.Time
}

// NewService creates a new settlement service.
func NewService(repo Repository, aggregator SalesAggregator, kits KitResolver, txManager tx.Manager) *Service {
	return &Service{
		repo:       repo,
		aggregator: aggregator,
		kits:       kits,
		txManager:  txManager,
		agora:      time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(agora func() time.Time) *Service {
	s.agora = agora
	return s
}

// FecharDia computes a seller's totals and commission for one day and
// upserts the settlement. Safe to retry: the (vendedor, data) uniqueness
// plus upsert semantics converge to exactly one row.
func (s *Service) FecharDia(ctx context.Context, empresaID, vendedorID id.ID, data time.Time) (*Resultado, error) {
	vendedor, err := s.repo.GetVendedor(ctx, empresaID, vendedorID)
	if err != nil {
		return nil, err
	}

	dia := truncarDia(data)

	totais, err := s.aggregator.TotaisDoDia(ctx, vendedorID, dia)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}

	percent, found, err := s.kits.ComissaoDoKit(ctx, vendedorID, dia)
	if err != nil {
		return nil, fmt.Errorf("resolve kit: %w", err)
	}
	if !found {
		percent = vendedor.ComissaoPadrao
	}

	// The commission is rounded so the returned value matches the
	// NUMERIC(14,2) row.
	agora := s.agora().UTC()
	f := &Fechamento{
		ID:                id.New(),
		VendedorID:        vendedorID,
		EmpresaID:         vendedor.EmpresaID,
		Data:              dia,
		Total:             totais.Total,
		TotalPix:          totais.TotalPix,
		TotalCartao:       totais.TotalCartao,
		TotalDinheiro:     totais.TotalDinheiro,
		ComissaoPercent:   percent,
		ComissaoCalculada: types.Round2(totais.Total.Mul(percent)),
		CriadoEm:          agora,
		AtualizadoEm:      agora,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Upsert(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "fechamento registrado",
		"vendedor_id", vendedorID,
		"data", dia.Format("2006-01-02"),
		"total", f.Total,
		"comissao", f.ComissaoCalculada)

	return &Resultado{
		Fechamento:      f,
		Totais:          totais,
		ComissaoPercent: percent,
	}, nil
}

// GetByVendedorData returns the settlement for one seller and day.
func (s *Service) GetByVendedorData(ctx context.Context, vendedorID id.ID, data time.Time) (*Fechamento, error) {
	return s.repo.GetByVendedorData(ctx, vendedorID, truncarDia(data))
}

// ListByVendedor returns settlements for a seller in a date range.
func (s *Service) ListByVendedor(ctx context.Context, vendedorID id.ID, de, ate time.Time) ([]*Fechamento, error) {
	return s.repo.ListByVendedor(ctx, vendedorID, truncarDia(de), truncarDia(ate))
}

func truncarDia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
