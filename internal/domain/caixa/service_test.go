package caixa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

// fakeTxManager runs the unit directly; transactional behavior is exercised
// against a real database elsewhere.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo keeps registers in memory and enforces the same uniqueness the
// partial index enforces in PostgreSQL.
type fakeRepo struct {
	caixas map[id.ID]*Caixa
	movs   map[id.ID][]Movimentacao
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		caixas: make(map[id.ID]*Caixa),
		movs:   make(map[id.ID][]Movimentacao),
	}
}

func (r *fakeRepo) Create(ctx context.Context, cx *Caixa) error {
	for _, existing := range r.caixas {
		if existing.Status == StatusAberto &&
			existing.Escopo == cx.Escopo &&
			existing.UsuarioID == cx.UsuarioID &&
			existing.DiaAbertura.Equal(cx.DiaAbertura) {
			return apperror.NewConflict("caixa already open for this day")
		}
	}
	cp := *cx
	r.caixas[cx.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, caixaID id.ID) (*Caixa, error) {
	cx, ok := r.caixas[caixaID]
	if !ok {
		return nil, apperror.NewNotFound("caixa", caixaID)
	}
	cp := *cx
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, caixaID id.ID) (*Caixa, error) {
	return r.GetByID(ctx, caixaID)
}

func (r *fakeRepo) Update(ctx context.Context, cx *Caixa) error {
	if _, ok := r.caixas[cx.ID]; !ok {
		return apperror.NewNotFound("caixa", cx.ID)
	}
	cp := *cx
	r.caixas[cx.ID] = &cp
	return nil
}

func (r *fakeRepo) CreateMovimentacao(ctx context.Context, mov *Movimentacao) (bool, error) {
	cx, ok := r.caixas[mov.CaixaID]
	if !ok || cx.Status != StatusAberto {
		return false, nil
	}
	r.movs[mov.CaixaID] = append(r.movs[mov.CaixaID], *mov)
	return true, nil
}

func (r *fakeRepo) ListMovimentacoes(ctx context.Context, caixaID id.ID) ([]Movimentacao, error) {
	return r.movs[caixaID], nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) ([]*Caixa, error) {
	var out []*Caixa
	for _, cx := range r.caixas {
		if cx.UsuarioID == filter.UsuarioID {
			cp := *cx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, fakeTxManager{})
}

func TestAbrir_NegativeSaldoInicial(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    id.New(),
		SaldoInicial: types.MustMoney("-1"),
	})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestAbrir_DuplicateOpenSameDayConflicts(t *testing.T) {
	svc := newTestService(newFakeRepo())
	usuario := id.New()

	params := AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.MustMoney("100"),
	}

	_, err := svc.Abrir(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), params)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestAbrir_NewDayAfterCloseAllowed(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	params := AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.Zero(),
	}

	cx, err := svc.Abrir(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), cx.ID, usuario, types.Zero())
	require.NoError(t, err)

	// A closed register no longer blocks the day.
	_, err = svc.Abrir(context.Background(), params)
	require.NoError(t, err)
}

func TestAbrir_InvalidFuso(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    id.New(),
		SaldoInicial: types.Zero(),
		Fuso:         "Not/AZone",
	})

	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestRegistrarMovimentacao_Valid(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.MustMoney("100"),
	})
	require.NoError(t, err)

	mov, err := svc.RegistrarMovimentacao(context.Background(), MovimentacaoParams{
		CaixaID:   cx.ID,
		UsuarioID: usuario,
		Tipo:      TipoEntrada,
		Metodo:    MetodoPix,
		Valor:     types.MustMoney("50"),
		Descricao: "venda balcao",
	})
	require.NoError(t, err)
	assert.Equal(t, cx.ID, mov.CaixaID)
	assert.Equal(t, usuario, mov.CriadoPor)
}

func TestRegistrarMovimentacao_ValorRoundedToCents(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.MustMoney("10.005"),
	})
	require.NoError(t, err)
	assert.True(t, cx.SaldoInicial.Equal(types.MustMoney("10.01")),
		"got %s", cx.SaldoInicial)

	mov, err := svc.RegistrarMovimentacao(context.Background(), MovimentacaoParams{
		CaixaID:   cx.ID,
		UsuarioID: usuario,
		Tipo:      TipoEntrada,
		Metodo:    MetodoPix,
		Valor:     types.MustMoney("33.333"),
		Descricao: "rateio",
	})
	require.NoError(t, err)
	assert.True(t, mov.Valor.Equal(types.MustMoney("33.33")), "got %s", mov.Valor)
}

func TestRegistrarMovimentacao_Validation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.Zero(),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		params MovimentacaoParams
	}{
		{
			name: "zero valor",
			params: MovimentacaoParams{
				CaixaID: cx.ID, UsuarioID: usuario,
				Tipo: TipoEntrada, Metodo: MetodoPix,
				Valor: types.Zero(), Descricao: "x",
			},
		},
		{
			name: "negative valor",
			params: MovimentacaoParams{
				CaixaID: cx.ID, UsuarioID: usuario,
				Tipo: TipoSaida, Metodo: MetodoPix,
				Valor: types.MustMoney("-5"), Descricao: "x",
			},
		},
		{
			name: "missing descricao",
			params: MovimentacaoParams{
				CaixaID: cx.ID, UsuarioID: usuario,
				Tipo: TipoEntrada, Metodo: MetodoPix,
				Valor: types.MustMoney("5"),
			},
		},
		{
			name: "invalid tipo",
			params: MovimentacaoParams{
				CaixaID: cx.ID, UsuarioID: usuario,
				Tipo: "transferencia", Metodo: MetodoPix,
				Valor: types.MustMoney("5"), Descricao: "x",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RegistrarMovimentacao(context.Background(), tt.params)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestRegistrarMovimentacao_ClosedRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.Zero(),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), cx.ID, usuario, types.Zero())
	require.NoError(t, err)

	_, err = svc.RegistrarMovimentacao(context.Background(), MovimentacaoParams{
		CaixaID:   cx.ID,
		UsuarioID: usuario,
		Tipo:      TipoEntrada,
		Metodo:    MetodoDinheiro,
		Valor:     types.MustMoney("10"),
		Descricao: "late",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestFechar_DoubleCloseFails(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.Zero(),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), cx.ID, usuario, types.MustMoney("10"))
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), cx.ID, usuario, types.MustMoney("10"))
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestFechar_NegativeSaldo(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Fechar(context.Background(), id.New(), id.New(), types.MustMoney("-1"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestFechar_OtherOwnerHiddenAsNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	dono := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    dono,
		SaldoInicial: types.Zero(),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), cx.ID, id.New(), types.Zero())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDetalhar_EndToEnd(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	usuario := id.New()

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    usuario,
		SaldoInicial: types.MustMoney("100"),
	})
	require.NoError(t, err)

	registrar := func(tipo TipoMovimentacao, valor string) {
		_, err := svc.RegistrarMovimentacao(context.Background(), MovimentacaoParams{
			CaixaID:   cx.ID,
			UsuarioID: usuario,
			Tipo:      tipo,
			Metodo:    MetodoDinheiro,
			Valor:     types.MustMoney(valor),
			Descricao: "mov",
		})
		require.NoError(t, err)
	}
	registrar(TipoEntrada, "50")
	registrar(TipoSaida, "20")

	_, err = svc.Fechar(context.Background(), cx.ID, usuario, types.MustMoney("130"))
	require.NoError(t, err)

	detalhe, err := svc.Detalhar(context.Background(), cx.ID, usuario)
	require.NoError(t, err)

	assert.Len(t, detalhe.Movimentacoes, 2)
	assert.True(t, detalhe.Resumo.SaldoTeorico.Equal(types.MustMoney("130")))
	require.NotNil(t, detalhe.Resumo.Diferenca)
	assert.True(t, detalhe.Resumo.Diferenca.IsZero())
}

func TestAbrir_DiaAberturaUsesFuso(t *testing.T) {
	repo := newFakeRepo()
	// 2026-03-10 01:30 UTC is still 2026-03-09 in Sao Paulo.
	fixo := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	svc := newTestService(repo).WithClock(func() time.Time { return fixo })

	cx, err := svc.Abrir(context.Background(), AbrirParams{
		Escopo:       EscopoSolo,
		UsuarioID:    id.New(),
		SaldoInicial: types.Zero(),
		Fuso:         "America/Sao_Paulo",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), cx.DiaAbertura)
}
