package caixa

import (
	"context"
	"fmt"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/tx"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

// Service provides business operations for cash registers.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
	agora     func() time.Time
}

// NewService creates a new cash register service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		agora:     time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *Service) WithClock(agora func() time.Time) *Service {
	s.agora = agora
	return s
}

// AbrirParams carries the open-register request.
type AbrirParams struct {
	Escopo       Escopo
	UsuarioID    id.ID
	EmpresaID    *id.ID
	VendedorID   *id.ID
	SaldoInicial types.Money
	Observacao   string
	// Fuso is the owner's IANA time zone used to compute the calendar day
	// of the one-open-register rule. Empty means server local time.
	Fuso string
}

// Abrir opens a new register for the day.
// The duplicate-open check is not a read-then-write: the insert carries the
// constrained dia_abertura value and the repository translates the unique
// violation into a conflict, so two concurrent opens cannot both succeed.
func (s *Service) Abrir(ctx context.Context, params AbrirParams) (*Caixa, error) {
	loc := time.Local
	if params.Fuso != "" {
		parsed, err := time.LoadLocation(params.Fuso)
		if err != nil {
			return nil, apperror.NewValidation("invalid fuso").
				WithDetail("field", "fuso").
				WithDetail("value", params.Fuso)
		}
		loc = parsed
	}

	abertoEm := s.agora()
	local := abertoEm.In(loc)

	cx := &Caixa{
		ID:           id.New(),
		Escopo:       params.Escopo,
		EmpresaID:    params.EmpresaID,
		VendedorID:   params.VendedorID,
		UsuarioID:    params.UsuarioID,
		SaldoInicial: types.Round2(params.SaldoInicial),
		Status:       StatusAberto,
		AbertoEm:     abertoEm,
		DiaAbertura:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
		Observacao:   params.Observacao,
	}

	if err := cx.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, cx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "caixa aberto",
		"caixa_id", cx.ID,
		"escopo", cx.Escopo,
		"saldo_inicial", cx.SaldoInicial)

	return cx, nil
}

// MovimentacaoParams carries the record-movement request.
type MovimentacaoParams struct {
	CaixaID   id.ID
	UsuarioID id.ID
	Tipo      TipoMovimentacao
	Metodo    MetodoPagamento
	Valor     types.Money
	Descricao string

	VendaID         *id.ID
	VendaServicoID  *id.ID
	DevolucaoID     *id.ID
	TransferenciaID *id.ID
}

// RegistrarMovimentacao records an immutable movement against an open register.
// No balance is cached; the summary is always derived from the movement list.
func (s *Service) RegistrarMovimentacao(ctx context.Context, params MovimentacaoParams) (*Movimentacao, error) {
	// Valor is rounded so the echoed movement matches the NUMERIC(14,2) row.
	mov := &Movimentacao{
		ID:              id.New(),
		CaixaID:         params.CaixaID,
		Tipo:            params.Tipo,
		Metodo:          params.Metodo,
		Valor:           types.Round2(params.Valor),
		Descricao:       params.Descricao,
		VendaID:         params.VendaID,
		VendaServicoID:  params.VendaServicoID,
		DevolucaoID:     params.DevolucaoID,
		TransferenciaID: params.TransferenciaID,
		CriadoPor:       params.UsuarioID,
		CriadoEm:        s.agora(),
	}

	if err := mov.Validate(ctx); err != nil {
		return nil, err
	}

	cx, err := s.buscarDoUsuario(ctx, params.CaixaID, params.UsuarioID)
	if err != nil {
		return nil, err
	}
	if !cx.Aberto() {
		return nil, apperror.NewInvalidState("caixa is not open").
			WithDetail("caixa_id", cx.ID).
			WithDetail("status", cx.Status)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// The insert re-checks the open status in the same statement, so a
		// close committed between the read above and this write loses no race.
		inserted, err := s.repo.CreateMovimentacao(ctx, mov)
		if err != nil {
			return fmt.Errorf("create movimentacao: %w", err)
		}
		if !inserted {
			return apperror.NewInvalidState("caixa is not open").
				WithDetail("caixa_id", cx.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "movimentacao registrada",
		"caixa_id", mov.CaixaID,
		"tipo", mov.Tipo,
		"metodo", mov.Metodo,
		"valor", mov.Valor)

	return mov, nil
}

// Fechar transitions a register to fechado and stores the declared balance.
// A second close attempt fails; it never silently succeeds.
func (s *Service) Fechar(ctx context.Context, caixaID, usuarioID id.ID, saldoFechamento types.Money) (*Caixa, error) {
	if saldoFechamento.IsNegative() {
		return nil, apperror.NewValidation("saldo_fechamento must not be negative").
			WithDetail("field", "saldo_fechamento")
	}
	saldoFechamento = types.Round2(saldoFechamento)

	var fechado *Caixa
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cx, err := s.repo.GetForUpdate(ctx, caixaID)
		if err != nil {
			return err
		}
		if cx.UsuarioID != usuarioID {
			return apperror.NewNotFound("caixa", caixaID)
		}
		if cx.Status == StatusFechado {
			return apperror.NewInvalidState("caixa already closed").
				WithDetail("caixa_id", cx.ID)
		}

		agora := s.agora()
		cx.Status = StatusFechado
		cx.SaldoFechamento = &saldoFechamento
		cx.FechadoEm = &agora

		if err := s.repo.Update(ctx, cx); err != nil {
			return fmt.Errorf("update caixa: %w", err)
		}
		fechado = cx
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "caixa fechado",
		"caixa_id", fechado.ID,
		"saldo_fechamento", saldoFechamento)

	return fechado, nil
}

// AtualizarObservacao updates the free-text note. Allowed in either state.
func (s *Service) AtualizarObservacao(ctx context.Context, caixaID, usuarioID id.ID, observacao string) (*Caixa, error) {
	var atualizado *Caixa
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		cx, err := s.repo.GetForUpdate(ctx, caixaID)
		if err != nil {
			return err
		}
		if cx.UsuarioID != usuarioID {
			return apperror.NewNotFound("caixa", caixaID)
		}

		cx.Observacao = observacao
		if err := s.repo.Update(ctx, cx); err != nil {
			return fmt.Errorf("update caixa: %w", err)
		}
		atualizado = cx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return atualizado, nil
}

// Detalhe bundles a register with its movement list and derived summary.
type Detalhe struct {
	Caixa         *Caixa         `json:"caixa"`
	Movimentacoes []Movimentacao `json:"movimentacoes"`
	Resumo        Resumo         `json:"resumo"`
}

// Detalhar returns a register with movements and the computed summary.
// Both reads run in one read-only transaction so the summary matches the
// movement list even while new movements are being recorded.
func (s *Service) Detalhar(ctx context.Context, caixaID, usuarioID id.ID) (*Detalhe, error) {
	var detalhe *Detalhe
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		cx, err := s.buscarDoUsuario(ctx, caixaID, usuarioID)
		if err != nil {
			return err
		}

		movs, err := s.repo.ListMovimentacoes(ctx, caixaID)
		if err != nil {
			return fmt.Errorf("list movimentacoes: %w", err)
		}

		detalhe = &Detalhe{
			Caixa:         cx,
			Movimentacoes: movs,
			Resumo:        CalcularResumo(cx, movs),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detalhe, nil
}

// List returns the caller's registers, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Caixa, error) {
	return s.repo.List(ctx, filter)
}

// buscarDoUsuario loads a register and hides it from other owners.
func (s *Service) buscarDoUsuario(ctx context.Context, caixaID, usuarioID id.ID) (*Caixa, error) {
	cx, err := s.repo.GetByID(ctx, caixaID)
	if err != nil {
		return nil, err
	}
	if cx.UsuarioID != usuarioID {
		return nil, apperror.NewNotFound("caixa", caixaID)
	}
	return cx, nil
}
