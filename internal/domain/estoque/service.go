package estoque

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

// Service provides stock mutation primitives for the transfer and return
// state machines. Every mutating method assumes the caller already opened
// the transaction that owns the state transition.
type Service struct {
	repo Repository
}

// NewService creates a new stock service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSaldo returns the seller balance for one product, zero when absent.
func (s *Service) GetSaldo(ctx context.Context, vendedorID, produtoID id.ID) (int, error) {
	saldo, err := s.repo.GetSaldoVendedor(ctx, vendedorID, produtoID)
	if err != nil {
		return 0, fmt.Errorf("get saldo: %w", err)
	}
	return saldo.Quantidade, nil
}

// ListSaldos returns all non-zero balances of one seller.
func (s *Service) ListSaldos(ctx context.Context, vendedorID id.ID) ([]SaldoVendedor, error) {
	return s.repo.ListSaldosVendedor(ctx, vendedorID)
}

// ListSaldosEmpresa returns all non-zero balances held by the company,
// the stock returned to it by confirmed devolucoes included.
func (s *Service) ListSaldosEmpresa(ctx context.Context, empresaID id.ID) ([]SaldoEmpresa, error) {
	return s.repo.ListSaldosEmpresa(ctx, empresaID)
}

// ListLogs returns the audit trail of one transfer or return, oldest first.
func (s *Service) ListLogs(ctx context.Context, referenciaID id.ID) ([]Log, error) {
	return s.repo.ListLogs(ctx, referenciaID)
}

// IncrementarVendedor adds quantities to a seller's balances.
func (s *Service) IncrementarVendedor(ctx context.Context, vendedorID id.ID, itens []Item) error {
	for _, item := range itens {
		if item.Quantidade <= 0 {
			return apperror.NewValidation("quantidade must be positive").
				WithDetail("produto_id", item.ProdutoID)
		}
		if err := s.repo.IncrementVendedor(ctx, vendedorID, item.ProdutoID, item.Quantidade); err != nil {
			return fmt.Errorf("increment vendedor %s produto %s: %w", vendedorID, item.ProdutoID, err)
		}
	}
	return nil
}

// VerificarDisponibilidade locks each seller balance and checks it covers the
// requested quantity. Must run inside the transaction that will decrement.
func (s *Service) VerificarDisponibilidade(ctx context.Context, vendedorID id.ID, itens []Item) error {
	for _, item := range itens {
		saldo, err := s.repo.GetSaldoVendedorForUpdate(ctx, vendedorID, item.ProdutoID)
		if err != nil {
			return fmt.Errorf("get saldo for update: %w", err)
		}
		if saldo.Quantidade < item.Quantidade {
			return apperror.NewInsufficientStock(
				item.ProdutoID.String(),
				item.Quantidade,
				saldo.Quantidade,
			)
		}
	}
	return nil
}

// DecrementarVendedor checks availability under lock and subtracts quantities.
func (s *Service) DecrementarVendedor(ctx context.Context, vendedorID id.ID, itens []Item) error {
	if err := s.VerificarDisponibilidade(ctx, vendedorID, itens); err != nil {
		return err
	}
	for _, item := range itens {
		if err := s.repo.IncrementVendedor(ctx, vendedorID, item.ProdutoID, -item.Quantidade); err != nil {
			return fmt.Errorf("decrement vendedor %s produto %s: %w", vendedorID, item.ProdutoID, err)
		}
	}
	return nil
}

// RestaurarEmpresa adds quantities back to a company's balances.
func (s *Service) RestaurarEmpresa(ctx context.Context, empresaID id.ID, itens []Item) error {
	for _, item := range itens {
		if err := s.repo.IncrementEmpresa(ctx, empresaID, item.ProdutoID, item.Quantidade); err != nil {
			return fmt.Errorf("restore empresa %s produto %s: %w", empresaID, item.ProdutoID, err)
		}
	}
	return nil
}

// LogParams carries the audit entry request.
type LogParams struct {
	Tipo         TipoLog
	EmpresaID    *id.ID
	VendedorID   *id.ID
	ReferenciaID id.ID
	Quantidade   int
	AtorID       id.ID
	Observacao   string
	Itens        []Item
}

type logItem struct {
	ProdutoID  id.ID `json:"produto_id"`
	Quantidade int   `json:"quantidade"`
}

// RegistrarLog appends an audit entry with the item breakdown as payload.
// It participates in the caller's transaction so a committed transition is
// never missing its log.
func (s *Service) RegistrarLog(ctx context.Context, params LogParams) error {
	itens := make([]logItem, 0, len(params.Itens))
	for _, item := range params.Itens {
		itens = append(itens, logItem{item.ProdutoID, item.Quantidade})
	}
	payload, err := json.Marshal(map[string]any{"itens": itens})
	if err != nil {
		return fmt.Errorf("marshal log payload: %w", err)
	}

	entry := &Log{
		ID:           id.New(),
		Tipo:         params.Tipo,
		EmpresaID:    params.EmpresaID,
		VendedorID:   params.VendedorID,
		ReferenciaID: params.ReferenciaID,
		Quantidade:   params.Quantidade,
		AtorID:       params.AtorID,
		Observacao:   params.Observacao,
		Payload:      payload,
		CriadoEm:     time.Now().UTC(),
	}

	if err := s.repo.CreateLog(ctx, entry); err != nil {
		return fmt.Errorf("create estoque log: %w", err)
	}

	logger.Debug(ctx, "estoque log registrado",
		"tipo", entry.Tipo,
		"referencia_id", entry.ReferenciaID,
		"quantidade", entry.Quantidade)

	return nil
}
