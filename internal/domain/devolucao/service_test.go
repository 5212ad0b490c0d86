package devolucao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	devolucoes map[id.ID]*Devolucao
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{devolucoes: make(map[id.ID]*Devolucao)}
}

func (r *fakeRepo) Create(ctx context.Context, d *Devolucao) error {
	cp := *d
	cp.Itens = append([]Item(nil), d.Itens...)
	r.devolucoes[d.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, devolucaoID id.ID) (*Devolucao, error) {
	d, ok := r.devolucoes[devolucaoID]
	if !ok {
		return nil, apperror.NewNotFound("devolucao", devolucaoID)
	}
	cp := *d
	cp.Itens = append([]Item(nil), d.Itens...)
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, devolucaoID id.ID) (*Devolucao, error) {
	return r.GetByID(ctx, devolucaoID)
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, devolucaoID id.ID, de, para Status, motivo string, decididoEm time.Time) (bool, error) {
	d, ok := r.devolucoes[devolucaoID]
	if !ok || d.Status != de {
		return false, nil
	}
	d.Status = para
	d.Motivo = motivo
	d.DecididoEm = &decididoEm
	return true, nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) ([]*Devolucao, error) {
	var out []*Devolucao
	for _, d := range r.devolucoes {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type saldoKey struct {
	dono    id.ID
	produto id.ID
}

type fakeEstoqueRepo struct {
	saldosVendedor map[saldoKey]int
	saldosEmpresa  map[saldoKey]int
	logs           []estoque.Log
	incrementos    int
}

func newFakeEstoqueRepo() *fakeEstoqueRepo {
	return &fakeEstoqueRepo{
		saldosVendedor: make(map[saldoKey]int),
		saldosEmpresa:  make(map[saldoKey]int),
	}
}

func (r *fakeEstoqueRepo) GetSaldoVendedor(ctx context.Context, vendedorID, produtoID id.ID) (estoque.SaldoVendedor, error) {
	return estoque.SaldoVendedor{
		VendedorID: vendedorID,
		ProdutoID:  produtoID,
		Quantidade: r.saldosVendedor[saldoKey{vendedorID, produtoID}],
	}, nil
}

func (r *fakeEstoqueRepo) GetSaldoVendedorForUpdate(ctx context.Context, vendedorID, produtoID id.ID) (estoque.SaldoVendedor, error) {
	return r.GetSaldoVendedor(ctx, vendedorID, produtoID)
}

func (r *fakeEstoqueRepo) IncrementVendedor(ctx context.Context, vendedorID, produtoID id.ID, delta int) error {
	r.saldosVendedor[saldoKey{vendedorID, produtoID}] += delta
	r.incrementos++
	return nil
}

func (r *fakeEstoqueRepo) IncrementEmpresa(ctx context.Context, empresaID, produtoID id.ID, delta int) error {
	r.saldosEmpresa[saldoKey{empresaID, produtoID}] += delta
	r.incrementos++
	return nil
}

func (r *fakeEstoqueRepo) ListSaldosVendedor(ctx context.Context, vendedorID id.ID) ([]estoque.SaldoVendedor, error) {
	var out []estoque.SaldoVendedor
	for k, q := range r.saldosVendedor {
		if k.dono == vendedorID && q != 0 {
			out = append(out, estoque.SaldoVendedor{VendedorID: k.dono, ProdutoID: k.produto, Quantidade: q})
		}
	}
	return out, nil
}

func (r *fakeEstoqueRepo) ListSaldosEmpresa(ctx context.Context, empresaID id.ID) ([]estoque.SaldoEmpresa, error) {
	var out []estoque.SaldoEmpresa
	for k, q := range r.saldosEmpresa {
		if k.dono == empresaID && q != 0 {
			out = append(out, estoque.SaldoEmpresa{EmpresaID: k.dono, ProdutoID: k.produto, Quantidade: q})
		}
	}
	return out, nil
}

func (r *fakeEstoqueRepo) CreateLog(ctx context.Context, entry *estoque.Log) error {
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeEstoqueRepo) ListLogs(ctx context.Context, referenciaID id.ID) ([]estoque.Log, error) {
	var out []estoque.Log
	for _, l := range r.logs {
		if l.ReferenciaID == referenciaID {
			out = append(out, l)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeRepo, *fakeEstoqueRepo) {
	repo := newFakeRepo()
	estoqueRepo := newFakeEstoqueRepo()
	svc := NewService(repo, estoque.NewService(estoqueRepo), fakeTxManager{})
	return svc, repo, estoqueRepo
}

func solicitarPendente(t *testing.T, svc *Service, estoqueRepo *fakeEstoqueRepo, vendedorID, empresaID, produtoID id.ID, qtd int) *Devolucao {
	t.Helper()
	d, err := svc.Solicitar(context.Background(), SolicitarParams{
		VendedorID: vendedorID,
		EmpresaID:  empresaID,
		Itens:      []ItemParams{{ProdutoID: produtoID, Quantidade: qtd}},
	})
	require.NoError(t, err)
	return d
}

func TestSolicitar(t *testing.T) {
	svc, repo, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	assert.Equal(t, StatusAguardandoConfirmacao, d.Status)
	assert.Equal(t, 4, d.TotalItens)
	// Requesting never moves stock, only acceptance does.
	assert.Equal(t, 10, estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}])

	persisted, err := repo.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Itens, 1)
}

func TestSolicitar_InsufficientStock(t *testing.T) {
	svc, repo, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 2

	_, err := svc.Solicitar(context.Background(), SolicitarParams{
		VendedorID: vendedorID,
		EmpresaID:  empresaID,
		Itens:      []ItemParams{{ProdutoID: produtoID, Quantidade: 5}},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 5, appErr.Details["requested"])
	assert.Equal(t, 2, appErr.Details["available"])
	assert.Empty(t, repo.devolucoes, "rejected request must not persist")
}

func TestSolicitar_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	vendedorID, empresaID := id.New(), id.New()

	tests := []struct {
		name  string
		itens []ItemParams
	}{
		{"no items", nil},
		{"zero quantidade", []ItemParams{{ProdutoID: id.New(), Quantidade: 0}}},
		{"negative quantidade", []ItemParams{{ProdutoID: id.New(), Quantidade: -3}}},
		{"nil produto", []ItemParams{{Quantidade: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Solicitar(context.Background(), SolicitarParams{
				VendedorID: vendedorID,
				EmpresaID:  empresaID,
				Itens:      tt.itens,
			})
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestConfirmar_MovesStockOnce(t *testing.T) {
	svc, _, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	atorID := id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	aceita, err := svc.Confirmar(context.Background(), d.ID, empresaID, atorID)
	require.NoError(t, err)
	assert.Equal(t, StatusAceita, aceita.Status)
	require.NotNil(t, aceita.DecididoEm)

	assert.Equal(t, 6, estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}])
	assert.Equal(t, 4, estoqueRepo.saldosEmpresa[saldoKey{empresaID, produtoID}])

	logs, err := estoqueRepo.ListLogs(context.Background(), d.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, estoque.LogDevolucaoAceita, logs[0].Tipo)
	assert.Equal(t, atorID, logs[0].AtorID)
}

func TestConfirmar_Twice(t *testing.T) {
	svc, _, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	_, err := svc.Confirmar(context.Background(), d.ID, empresaID, id.New())
	require.NoError(t, err)

	_, err = svc.Confirmar(context.Background(), d.ID, empresaID, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
	assert.Equal(t, 6, estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}],
		"stock must not move twice")
	assert.Equal(t, 4, estoqueRepo.saldosEmpresa[saldoKey{empresaID, produtoID}])
}

func TestConfirmar_WrongEmpresa(t *testing.T) {
	svc, _, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	_, err := svc.Confirmar(context.Background(), d.ID, id.New(), id.New())
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
	assert.Equal(t, 10, estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}])
}

func TestConfirmar_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Confirmar(context.Background(), id.New(), id.New(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecusar(t *testing.T) {
	svc, _, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	atorID := id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	recusada, err := svc.Recusar(context.Background(), d.ID, empresaID, atorID, "produto avariado")
	require.NoError(t, err)
	assert.Equal(t, StatusRecusada, recusada.Status)
	assert.Equal(t, "produto avariado", recusada.Motivo)
	require.NotNil(t, recusada.DecididoEm)

	// Refusal keeps every balance where it was.
	assert.Equal(t, 10, estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}])
	assert.Zero(t, estoqueRepo.saldosEmpresa[saldoKey{empresaID, produtoID}])

	logs, err := estoqueRepo.ListLogs(context.Background(), d.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, estoque.LogDevolucaoRecusada, logs[0].Tipo)
	assert.Equal(t, "produto avariado", logs[0].Observacao)
}

func TestRecusar_MotivoRequired(t *testing.T) {
	svc, _, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	for _, motivo := range []string{"", "   "} {
		_, err := svc.Recusar(context.Background(), d.ID, empresaID, id.New(), motivo)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}

	// Still pending after the rejected refusals.
	atual, err := svc.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, atual.Pendente())
}

func TestRecusar_AfterConfirmacao(t *testing.T) {
	svc, _, estoqueRepo := newTestService()
	vendedorID, empresaID, produtoID := id.New(), id.New(), id.New()
	estoqueRepo.saldosVendedor[saldoKey{vendedorID, produtoID}] = 10

	d := solicitarPendente(t, svc, estoqueRepo, vendedorID, empresaID, produtoID, 4)

	_, err := svc.Confirmar(context.Background(), d.ID, empresaID, id.New())
	require.NoError(t, err)

	_, err = svc.Recusar(context.Background(), d.ID, empresaID, id.New(), "mudou de ideia")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}
