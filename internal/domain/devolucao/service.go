package devolucao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/tx"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

// Service provides business operations for inventory returns.
type Service struct {
	repo      Repository
	estoque   *estoque.Service
	txManager tx.Manager
}

// NewService creates a new return service.
func NewService(repo Repository, estoqueService *estoque.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		estoque:   estoqueService,
		txManager: txManager,
	}
}

// ItemParams is one requested product line.
type ItemParams struct {
	ProdutoID  id.ID
	Quantidade int
}

// SolicitarParams carries the request-return request.
type SolicitarParams struct {
	VendedorID id.ID
	EmpresaID  id.ID
	Observacao string
	Itens      []ItemParams
}

// Solicitar persists a new return in aguardando_confirmacao.
// The seller must currently hold at least the requested quantity of each
// product; the availability check locks the balances so a concurrent sale
// cannot slip under the request.
func (s *Service) Solicitar(ctx context.Context, params SolicitarParams) (*Devolucao, error) {
	d := &Devolucao{
		ID:         id.New(),
		VendedorID: params.VendedorID,
		EmpresaID:  params.EmpresaID,
		Status:     StatusAguardandoConfirmacao,
		Observacao: params.Observacao,
		CriadoEm:   time.Now().UTC(),
		Itens:      make([]Item, 0, len(params.Itens)),
	}

	for _, item := range params.Itens {
		d.Itens = append(d.Itens, Item{
			ID:          id.New(),
			DevolucaoID: d.ID,
			ProdutoID:   item.ProdutoID,
			Quantidade:  item.Quantidade,
		})
		d.TotalItens += item.Quantidade
	}

	if err := d.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.estoque.VerificarDisponibilidade(ctx, d.VendedorID, itensEstoque(d.Itens)); err != nil {
			return err
		}
		return s.repo.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "devolucao solicitada",
		"devolucao_id", d.ID,
		"vendedor_id", d.VendedorID,
		"total_itens", d.TotalItens)

	return d, nil
}

// Confirmar accepts a pending return on behalf of the receiving company.
// Seller stock decrements, company stock restores, the status flips and the
// audit entry lands in one transaction, so the mutation applies exactly once.
func (s *Service) Confirmar(ctx context.Context, devolucaoID, empresaID, atorID id.ID) (*Devolucao, error) {
	var aceita *Devolucao
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.repo.GetForUpdate(ctx, devolucaoID)
		if err != nil {
			return err
		}
		if d.EmpresaID != empresaID {
			return apperror.NewForbidden("devolucao belongs to another empresa").
				WithDetail("devolucao_id", d.ID)
		}
		if !d.Pendente() {
			return apperror.NewInvalidState("devolucao already decided").
				WithDetail("devolucao_id", d.ID).
				WithDetail("status", d.Status)
		}

		decididoEm := time.Now().UTC()
		flipped, err := s.repo.UpdateStatus(ctx, d.ID, StatusAguardandoConfirmacao, StatusAceita, "", decididoEm)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !flipped {
			return apperror.NewInvalidState("devolucao already decided").
				WithDetail("devolucao_id", d.ID)
		}

		itens := itensEstoque(d.Itens)
		if err := s.estoque.DecrementarVendedor(ctx, d.VendedorID, itens); err != nil {
			return err
		}
		if err := s.estoque.RestaurarEmpresa(ctx, d.EmpresaID, itens); err != nil {
			return err
		}

		if err := s.estoque.RegistrarLog(ctx, estoque.LogParams{
			Tipo:         estoque.LogDevolucaoAceita,
			EmpresaID:    &d.EmpresaID,
			VendedorID:   &d.VendedorID,
			ReferenciaID: d.ID,
			Quantidade:   d.TotalItens,
			AtorID:       atorID,
			Observacao:   d.Observacao,
			Itens:        itens,
		}); err != nil {
			return err
		}

		d.Status = StatusAceita
		d.DecididoEm = &decididoEm
		aceita = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "devolucao aceita",
		"devolucao_id", aceita.ID,
		"vendedor_id", aceita.VendedorID,
		"total_itens", aceita.TotalItens)

	return aceita, nil
}

// Recusar refuses a pending return. A non-empty reason is required and the
// refusal is audited. No stock moves.
func (s *Service) Recusar(ctx context.Context, devolucaoID, empresaID, atorID id.ID, motivo string) (*Devolucao, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, apperror.NewValidation("motivo is required").
			WithDetail("field", "motivo")
	}

	var recusada *Devolucao
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.repo.GetForUpdate(ctx, devolucaoID)
		if err != nil {
			return err
		}
		if d.EmpresaID != empresaID {
			return apperror.NewForbidden("devolucao belongs to another empresa").
				WithDetail("devolucao_id", d.ID)
		}
		if !d.Pendente() {
			return apperror.NewInvalidState("devolucao already decided").
				WithDetail("devolucao_id", d.ID).
				WithDetail("status", d.Status)
		}

		decididoEm := time.Now().UTC()
		flipped, err := s.repo.UpdateStatus(ctx, d.ID, StatusAguardandoConfirmacao, StatusRecusada, motivo, decididoEm)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if !flipped {
			return apperror.NewInvalidState("devolucao already decided").
				WithDetail("devolucao_id", d.ID)
		}

		if err := s.estoque.RegistrarLog(ctx, estoque.LogParams{
			Tipo:         estoque.LogDevolucaoRecusada,
			EmpresaID:    &d.EmpresaID,
			VendedorID:   &d.VendedorID,
			ReferenciaID: d.ID,
			Quantidade:   d.TotalItens,
			AtorID:       atorID,
			Observacao:   motivo,
			Itens:        itensEstoque(d.Itens),
		}); err != nil {
			return err
		}

		d.Status = StatusRecusada
		d.Motivo = motivo
		d.DecididoEm = &decididoEm
		recusada = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "devolucao recusada",
		"devolucao_id", recusada.ID,
		"motivo", motivo)

	return recusada, nil
}

// GetByID returns a return with its items.
func (s *Service) GetByID(ctx context.Context, devolucaoID id.ID) (*Devolucao, error) {
	return s.repo.GetByID(ctx, devolucaoID)
}

// List returns returns matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Devolucao, error) {
	return s.repo.List(ctx, filter)
}

func itensEstoque(itens []Item) []estoque.Item {
	out := make([]estoque.Item, 0, len(itens))
	for _, item := range itens {
		out = append(out, estoque.Item{ProdutoID: item.ProdutoID, Quantidade: item.Quantidade})
	}
	return out
}
