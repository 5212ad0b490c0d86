package transferencia

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/tx"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

// Service provides business operations for inventory transfers.
type Service struct {
	repo      Repository
	estoque   *estoque.Service
	txManager tx.Manager
}

// NewService creates a new transfer service.
func NewService(repo Repository, estoqueService *estoque.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		estoque:   estoqueService,
		txManager: txManager,
	}
}

// ItemParams is one requested product line.
type ItemParams struct {
	ProdutoID     id.ID
	Quantidade    int
	PrecoUnitario types.Money
}

// CriarParams carries the create-transfer request.
type CriarParams struct {
	EmpresaID  id.ID
	VendedorID id.ID
	Observacao string
	Itens      []ItemParams
}

// Criar persists a new transfer in aguardando_aceite.
func (s *Service) Criar(ctx context.Context, params CriarParams) (*Transferencia, error) {
	t := &Transferencia{
		ID:         id.New(),
		EmpresaID:  params.EmpresaID,
		VendedorID: params.VendedorID,
		Status:     StatusAguardandoAceite,
		Observacao: params.Observacao,
		CriadoEm:   time.Now().UTC(),
		Itens:      make([]Item, 0, len(params.Itens)),
	}

	for _, item := range params.Itens {
		t.Itens = append(t.Itens, Item{
			ID:              id.New(),
			TransferenciaID: t.ID,
			ProdutoID:       item.ProdutoID,
			Quantidade:      item.Quantidade,
			PrecoUnitario:   item.PrecoUnitario,
		})
		t.TotalItens += item.Quantidade
	}

	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transferencia criada",
		"transferencia_id", t.ID,
		"vendedor_id", t.VendedorID,
		"total_itens", t.TotalItens)

	return t, nil
}

// Aceitar accepts a pending transfer on behalf of the receiving seller.
// The seller stock increments and the status flip commit atomically; the
// conditional status update guarantees the stock is applied exactly once
// even under concurrent decisions.
func (s *Service) Aceitar(ctx context.Context, transferenciaID, vendedorID id.ID) (*Transferencia, error) {
	var aceita *Transferencia
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetForUpdate(ctx, transferenciaID)
		if err != nil {
			return err
		}
		if t.VendedorID != vendedorID {
			return apperror.NewForbidden("transferencia belongs to another vendedor").
				WithDetail("transferencia_id", t.ID)
		}
		if !t.Pendente() {
			return apperror.NewInvalidState("transferencia already decided").
				WithDetail("transferencia_id", t.ID).
				WithDetail("status", t.Status)
		}

		decididoEm := time.Now().UTC()
		flipped, err := s.repo.UpdateStatus(ctx, t.ID, StatusAguardandoAceite, StatusAceita, decididoEm)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !flipped {
			return apperror.NewInvalidState("transferencia already decided").
				WithDetail("transferencia_id", t.ID)
		}

		if err := s.estoque.IncrementarVendedor(ctx, t.VendedorID, itensEstoque(t.Itens)); err != nil {
			return err
		}

		if err := s.estoque.RegistrarLog(ctx, estoque.LogParams{
			Tipo:         estoque.LogTransferenciaAceita,
			EmpresaID:    &t.EmpresaID,
			VendedorID:   &t.VendedorID,
			ReferenciaID: t.ID,
			Quantidade:   t.TotalItens,
			AtorID:       vendedorID,
			Itens:        itensEstoque(t.Itens),
		}); err != nil {
			return err
		}

		t.Status = StatusAceita
		t.DecididoEm = &decididoEm
		aceita = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transferencia aceita",
		"transferencia_id", aceita.ID,
		"vendedor_id", aceita.VendedorID,
		"total_itens", aceita.TotalItens)

	return aceita, nil
}

// Recusar rejects a pending transfer. No stock moves, but the decision is
// audited like an accepted one.
func (s *Service) Recusar(ctx context.Context, transferenciaID, vendedorID id.ID) (*Transferencia, error) {
	var recusada *Transferencia
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetForUpdate(ctx, transferenciaID)
		if err != nil {
			return err
		}
		if t.VendedorID != vendedorID {
			return apperror.NewForbidden("transferencia belongs to another vendedor").
				WithDetail("transferencia_id", t.ID)
		}
		if !t.Pendente() {
			return apperror.NewInvalidState("transferencia already decided").
				WithDetail("transferencia_id", t.ID).
				WithDetail("status", t.Status)
		}

		decididoEm := time.Now().UTC()
		flipped, err := s.repo.UpdateStatus(ctx, t.ID, StatusAguardandoAceite, StatusRecusada, decididoEm)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !flipped {
			return apperror.NewInvalidState("transferencia already decided").
				WithDetail("transferencia_id", t.ID)
		}

		if err := s.estoque.RegistrarLog(ctx, estoque.LogParams{
			Tipo:         estoque.LogTransferenciaNegada,
			EmpresaID:    &t.EmpresaID,
			VendedorID:   &t.VendedorID,
			ReferenciaID: t.ID,
			Quantidade:   t.TotalItens,
			AtorID:       vendedorID,
			Itens:        itensEstoque(t.Itens),
		}); err != nil {
			return err
		}

		t.Status = StatusRecusada
		t.DecididoEm = &decididoEm
		recusada = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transferencia recusada",
		"transferencia_id", recusada.ID,
		"vendedor_id", recusada.VendedorID)

	return recusada, nil
}

// Cancelar cancels a pending transfer on behalf of the issuing company.
func (s *Service) Cancelar(ctx context.Context, transferenciaID, empresaID id.ID) (*Transferencia, error) {
	var cancelada *Transferencia
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := s.repo.GetForUpdate(ctx, transferenciaID)
		if err != nil {
			return err
		}
		if t.EmpresaID != empresaID {
			return apperror.NewForbidden("transferencia belongs to another empresa").
				WithDetail("transferencia_id", t.ID)
		}
		if !t.Pendente() {
			return apperror.NewInvalidState("transferencia already decided").
				WithDetail("transferencia_id", t.ID).
				WithDetail("status", t.Status)
		}

		decididoEm := time.Now().UTC()
		flipped, err := s.repo.UpdateStatus(ctx, t.ID, StatusAguardandoAceite, StatusCancelada, decididoEm)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !flipped {
			return apperror.NewInvalidState("transferencia already decided").
				WithDetail("transferencia_id", t.ID)
		}

		t.Status = StatusCancelada
		t.DecididoEm = &decididoEm
		cancelada = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transferencia cancelada",
		"transferencia_id", cancelada.ID,
		"empresa_id", cancelada.EmpresaID)

	return cancelada, nil
}

// GetByID returns a transfer with its items.
func (s *Service) GetByID(ctx context.Context, transferenciaID id.ID) (*Transferencia, error) {
	return s.repo.GetByID(ctx, transferenciaID)
}

// List returns transfers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transferencia, error) {
	return s.repo.List(ctx, filter)
}

func itensEstoque(itens []Item) []estoque.Item {
	out := make([]estoque.Item, 0, len(itens))
	for _, item := range itens {
		out = append(out, estoque.Item{ProdutoID: item.ProdutoID, Quantidade: item.Quantidade})
	}
	return out
}
