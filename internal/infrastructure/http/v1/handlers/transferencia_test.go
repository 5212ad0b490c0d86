package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	appctx "github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/context"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/transferencia"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/middleware"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stubEstoqueRepo satisfies estoque.Repository for handlers that never
// touch stock.
type stubEstoqueRepo struct{}

func (stubEstoqueRepo) GetSaldoVendedor(ctx context.Context, vendedorID, produtoID id.ID) (estoque.SaldoVendedor, error) {
	return estoque.SaldoVendedor{}, nil
}

func (stubEstoqueRepo) GetSaldoVendedorForUpdate(ctx context.Context, vendedorID, produtoID id.ID) (estoque.SaldoVendedor, error) {
	return estoque.SaldoVendedor{}, nil
}

func (stubEstoqueRepo) IncrementVendedor(ctx context.Context, vendedorID, produtoID id.ID, delta int) error {
	return nil
}

func (stubEstoqueRepo) IncrementEmpresa(ctx context.Context, empresaID, produtoID id.ID, delta int) error {
	return nil
}

func (stubEstoqueRepo) ListSaldosVendedor(ctx context.Context, vendedorID id.ID) ([]estoque.SaldoVendedor, error) {
	return nil, nil
}

func (stubEstoqueRepo) ListSaldosEmpresa(ctx context.Context, empresaID id.ID) ([]estoque.SaldoEmpresa, error) {
	return nil, nil
}

func (stubEstoqueRepo) CreateLog(ctx context.Context, entry *estoque.Log) error { return nil }

func (stubEstoqueRepo) ListLogs(ctx context.Context, referenciaID id.ID) ([]estoque.Log, error) {
	return nil, nil
}

type fakeTransferenciaRepo struct {
	transferencias map[id.ID]*transferencia.Transferencia
}

func newFakeTransferenciaRepo() *fakeTransferenciaRepo {
	return &fakeTransferenciaRepo{transferencias: make(map[id.ID]*transferencia.Transferencia)}
}

func (r *fakeTransferenciaRepo) Create(ctx context.Context, t *transferencia.Transferencia) error {
	cp := *t
	r.transferencias[t.ID] = &cp
	return nil
}

func (r *fakeTransferenciaRepo) GetByID(ctx context.Context, transferenciaID id.ID) (*transferencia.Transferencia, error) {
	t, ok := r.transferencias[transferenciaID]
	if !ok {
		return nil, apperror.NewNotFound("transferencia", transferenciaID)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTransferenciaRepo) GetForUpdate(ctx context.Context, transferenciaID id.ID) (*transferencia.Transferencia, error) {
	return r.GetByID(ctx, transferenciaID)
}

func (r *fakeTransferenciaRepo) UpdateStatus(ctx context.Context, transferenciaID id.ID, de, para transferencia.Status, decididoEm time.Time) (bool, error) {
	t, ok := r.transferencias[transferenciaID]
	if !ok || t.Status != de {
		return false, nil
	}
	t.Status = para
	t.DecididoEm = &decididoEm
	return true, nil
}

func (r *fakeTransferenciaRepo) List(ctx context.Context, filter transferencia.ListFilter) ([]*transferencia.Transferencia, error) {
	var out []*transferencia.Transferencia
	for _, t := range r.transferencias {
		if filter.EmpresaID != nil && t.EmpresaID != *filter.EmpresaID {
			continue
		}
		if filter.VendedorID != nil && t.VendedorID != *filter.VendedorID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// withUser injects the authenticated user the way middleware.Auth does.
func withUser(user *appctx.UserContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func novaTransferencia(repo *fakeTransferenciaRepo, empresaID, vendedorID id.ID) *transferencia.Transferencia {
	t := &transferencia.Transferencia{
		ID:         id.New(),
		EmpresaID:  empresaID,
		VendedorID: vendedorID,
		Status:     transferencia.StatusAguardandoAceite,
		TotalItens: 1,
		CriadoEm:   time.Now().UTC(),
	}
	repo.transferencias[t.ID] = t
	return t
}

func transferenciaRouter(repo *fakeTransferenciaRepo, user *appctx.UserContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := transferencia.NewService(repo, estoque.NewService(stubEstoqueRepo{}), fakeTxManager{})
	handler := NewTransferenciaHandler(NewBaseHandler(), svc)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(withUser(user))
	router.GET("/transferencias", handler.List)
	router.GET("/transferencias/:id", handler.Get)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func listedCount(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Count
}

func TestTransferenciaGet_HiddenFromOtherTenants(t *testing.T) {
	repo := newFakeTransferenciaRepo()
	empresaID, vendedorID := id.New(), id.New()
	tr := novaTransferencia(repo, empresaID, vendedorID)

	dona := &appctx.UserContext{
		UserID:    id.New().String(),
		EmpresaID: empresaID.String(),
		Perfil:    appctx.PerfilEmpresa,
	}
	rec := doRequest(t, transferenciaRouter(repo, dona), "/transferencias/"+tr.ID.String())
	assert.Equal(t, http.StatusOK, rec.Code)

	destinatario := &appctx.UserContext{
		UserID:     id.New().String(),
		EmpresaID:  empresaID.String(),
		VendedorID: vendedorID.String(),
		Perfil:     appctx.PerfilVendedor,
	}
	rec = doRequest(t, transferenciaRouter(repo, destinatario), "/transferencias/"+tr.ID.String())
	assert.Equal(t, http.StatusOK, rec.Code)

	intruso := &appctx.UserContext{
		UserID:    id.New().String(),
		EmpresaID: id.New().String(),
		Perfil:    appctx.PerfilEmpresa,
	}
	rec = doRequest(t, transferenciaRouter(repo, intruso), "/transferencias/"+tr.ID.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransferenciaList_ScopedToCallerEmpresa(t *testing.T) {
	repo := newFakeTransferenciaRepo()
	empresaID, outraEmpresa := id.New(), id.New()
	novaTransferencia(repo, empresaID, id.New())
	novaTransferencia(repo, empresaID, id.New())
	novaTransferencia(repo, outraEmpresa, id.New())

	user := &appctx.UserContext{
		UserID:    id.New().String(),
		EmpresaID: empresaID.String(),
		Perfil:    appctx.PerfilEmpresa,
	}
	router := transferenciaRouter(repo, user)

	rec := doRequest(t, router, "/transferencias")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, listedCount(t, rec))

	// A foreign empresa_id in the query does not widen the scope.
	rec = doRequest(t, router, "/transferencias?empresa_id="+outraEmpresa.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, listedCount(t, rec))
}

func TestTransferenciaList_VendedorSeesOnlyOwn(t *testing.T) {
	repo := newFakeTransferenciaRepo()
	empresaID, vendedorID := id.New(), id.New()
	novaTransferencia(repo, empresaID, vendedorID)
	novaTransferencia(repo, empresaID, id.New())

	user := &appctx.UserContext{
		UserID:     id.New().String(),
		EmpresaID:  empresaID.String(),
		VendedorID: vendedorID.String(),
		Perfil:     appctx.PerfilVendedor,
	}
	router := transferenciaRouter(repo, user)

	rec := doRequest(t, router, "/transferencias")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, listedCount(t, rec))

	// Sellers cannot list another seller's transfers.
	rec = doRequest(t, router, "/transferencias?vendedor_id="+id.New().String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, listedCount(t, rec))
}
