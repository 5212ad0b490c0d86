package fechamento

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/types"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type chave struct {
	vendedor id.ID
	data     time.Time
}

// fakeRepo upserts keyed by (vendedor, data) like the unique constraint does.
type fakeRepo struct {
	vendedores  map[id.ID]*Vendedor
	fechamentos map[chave]*Fechamento
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		vendedores:  make(map[id.ID]*Vendedor),
		fechamentos: make(map[chave]*Fechamento),
	}
}

func (r *fakeRepo) GetVendedor(ctx context.Context, empresaID, vendedorID id.ID) (*Vendedor, error) {
	v, ok := r.vendedores[vendedorID]
	if !ok || v.EmpresaID != empresaID {
		return nil, apperror.NewNotFound("vendedor", vendedorID)
	}
	cp := *v
	return &cp, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, f *Fechamento) error {
	k := chave{vendedor: f.VendedorID, data: f.Data}
	if existing, ok := r.fechamentos[k]; ok {
		// Overwrite in place, keep identity and criado_em.
		f.ID = existing.ID
		f.CriadoEm = existing.CriadoEm
	}
	cp := *f
	r.fechamentos[k] = &cp
	return nil
}

func (r *fakeRepo) GetByVendedorData(ctx context.Context, vendedorID id.ID, data time.Time) (*Fechamento, error) {
	f, ok := r.fechamentos[chave{vendedor: vendedorID, data: data}]
	if !ok {
		return nil, apperror.NewNotFound("fechamento", vendedorID)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeRepo) ListByVendedor(ctx context.Context, vendedorID id.ID, de, ate time.Time) ([]*Fechamento, error) {
	var out []*Fechamento
	for k, f := range r.fechamentos {
		if k.vendedor == vendedorID && !k.data.Before(de) && !k.data.After(ate) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeAggregator struct {
	totais TotaisVenda
	err    error
	calls  int
}

func (a *fakeAggregator) TotaisDoDia(ctx context.Context, vendedorID id.ID, data time.Time) (TotaisVenda, error) {
	a.calls++
	if a.err != nil {
		return TotaisVenda{}, a.err
	}
	return a.totais, nil
}

type fakeKits struct {
	percent types.Money
	found   bool
}

func (k *fakeKits) ComissaoDoKit(ctx context.Context, vendedorID id.ID, data time.Time) (types.Money, bool, error) {
	return k.percent, k.found, nil
}

func setup(t *testing.T, totais TotaisVenda, kits *fakeKits) (*Service, *fakeRepo, id.ID, id.ID) {
	t.Helper()
	repo := newFakeRepo()
	empresaID := id.New()
	vendedorID := id.New()
	repo.vendedores[vendedorID] = &Vendedor{
		ID:             vendedorID,
		EmpresaID:      empresaID,
		Nome:           "Vendedor Teste",
		ComissaoPadrao: types.MustMoney("0.08"),
	}
	svc := NewService(repo, &fakeAggregator{totais: totais}, kits, fakeTxManager{})
	return svc, repo, empresaID, vendedorID
}

func TestFecharDia_ComissaoDoKit(t *testing.T) {
	totais := TotaisVenda{Total: types.MustMoney("1000")}
	kits := &fakeKits{percent: types.MustMoney("0.1"), found: true}
	svc, _, empresaID, vendedorID := setup(t, totais, kits)

	resultado, err := svc.FecharDia(context.Background(), empresaID, vendedorID, time.Now())
	require.NoError(t, err)

	assert.True(t, resultado.ComissaoPercent.Equal(types.MustMoney("0.1")))
	assert.True(t, resultado.Fechamento.ComissaoCalculada.Equal(types.MustMoney("100")))
}

func TestFecharDia_ComissaoPadraoWhenNoKit(t *testing.T) {
	totais := TotaisVenda{Total: types.MustMoney("1000")}
	svc, _, empresaID, vendedorID := setup(t, totais, &fakeKits{found: false})

	resultado, err := svc.FecharDia(context.Background(), empresaID, vendedorID, time.Now())
	require.NoError(t, err)

	assert.True(t, resultado.ComissaoPercent.Equal(types.MustMoney("0.08")))
	assert.True(t, resultado.Fechamento.ComissaoCalculada.Equal(types.MustMoney("80")))
}

func TestFecharDia_ComissaoRoundedToCents(t *testing.T) {
	// 1000.55 * 0.08 = 80.044, which NUMERIC(14,2) stores as 80.04. The
	// returned value must match the row, not the raw product.
	totais := TotaisVenda{Total: types.MustMoney("1000.55")}
	svc, repo, empresaID, vendedorID := setup(t, totais, &fakeKits{found: false})

	resultado, err := svc.FecharDia(context.Background(), empresaID, vendedorID, time.Now())
	require.NoError(t, err)

	assert.True(t, resultado.Fechamento.ComissaoCalculada.Equal(types.MustMoney("80.04")),
		"got %s", resultado.Fechamento.ComissaoCalculada)

	for _, f := range repo.fechamentos {
		assert.True(t, f.ComissaoCalculada.Equal(types.MustMoney("80.04")))
	}
}

func TestFecharDia_IdempotentConvergence(t *testing.T) {
	totais := TotaisVenda{Total: types.MustMoney("500")}
	svc, repo, empresaID, vendedorID := setup(t, totais, &fakeKits{found: false})
	data := time.Date(2026, 8, 1, 13, 45, 0, 0, time.UTC)

	primeiro, err := svc.FecharDia(context.Background(), empresaID, vendedorID, data)
	require.NoError(t, err)

	segundo, err := svc.FecharDia(context.Background(), empresaID, vendedorID, data)
	require.NoError(t, err)

	assert.Len(t, repo.fechamentos, 1, "recomputation must overwrite, never duplicate")
	assert.Equal(t, primeiro.Fechamento.Data, segundo.Fechamento.Data)
	assert.True(t, segundo.Fechamento.Total.Equal(types.MustMoney("500")))
}

func TestFecharDia_TruncatesToDay(t *testing.T) {
	svc, repo, empresaID, vendedorID := setup(t, TotaisVenda{}, &fakeKits{found: false})

	// Two times within the same day settle the same row.
	_, err := svc.FecharDia(context.Background(), empresaID, vendedorID,
		time.Date(2026, 8, 1, 0, 10, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = svc.FecharDia(context.Background(), empresaID, vendedorID,
		time.Date(2026, 8, 1, 23, 55, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Len(t, repo.fechamentos, 1)
}

func TestFecharDia_VendedorNotFound(t *testing.T) {
	svc, _, empresaID, _ := setup(t, TotaisVenda{}, &fakeKits{found: false})

	_, err := svc.FecharDia(context.Background(), empresaID, id.New(), time.Now())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFecharDia_WrongEmpresaHiddenAsNotFound(t *testing.T) {
	svc, _, _, vendedorID := setup(t, TotaisVenda{}, &fakeKits{found: false})

	_, err := svc.FecharDia(context.Background(), id.New(), vendedorID, time.Now())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestFecharDia_AggregationFaultPropagates(t *testing.T) {
	repo := newFakeRepo()
	empresaID := id.New()
	vendedorID := id.New()
	repo.vendedores[vendedorID] = &Vendedor{
		ID: vendedorID, EmpresaID: empresaID,
		ComissaoPadrao: types.MustMoney("0.05"),
	}
	boom := errors.New("vendas query failed")
	svc := NewService(repo, &fakeAggregator{err: boom}, &fakeKits{}, fakeTxManager{})

	_, err := svc.FecharDia(context.Background(), empresaID, vendedorID, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, repo.fechamentos, "no settlement row on aggregation fault")
}
