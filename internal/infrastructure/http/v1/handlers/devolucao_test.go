package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	appctx "github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/context"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/devolucao"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/middleware"
)

type fakeDevolucaoRepo struct {
	devolucoes map[id.ID]*devolucao.Devolucao
}

func newFakeDevolucaoRepo() *fakeDevolucaoRepo {
	return &fakeDevolucaoRepo{devolucoes: make(map[id.ID]*devolucao.Devolucao)}
}

func (r *fakeDevolucaoRepo) Create(ctx context.Context, d *devolucao.Devolucao) error {
	cp := *d
	r.devolucoes[d.ID] = &cp
	return nil
}

func (r *fakeDevolucaoRepo) GetByID(ctx context.Context, devolucaoID id.ID) (*devolucao.Devolucao, error) {
	d, ok := r.devolucoes[devolucaoID]
	if !ok {
		return nil, apperror.NewNotFound("devolucao", devolucaoID)
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDevolucaoRepo) GetForUpdate(ctx context.Context, devolucaoID id.ID) (*devolucao.Devolucao, error) {
	return r.GetByID(ctx, devolucaoID)
}

func (r *fakeDevolucaoRepo) UpdateStatus(ctx context.Context, devolucaoID id.ID, de, para devolucao.Status, motivo string, decididoEm time.Time) (bool, error) {
	d, ok := r.devolucoes[devolucaoID]
	if !ok || d.Status != de {
		return false, nil
	}
	d.Status = para
	d.Motivo = motivo
	d.DecididoEm = &decididoEm
	return true, nil
}

func (r *fakeDevolucaoRepo) List(ctx context.Context, filter devolucao.ListFilter) ([]*devolucao.Devolucao, error) {
	var out []*devolucao.Devolucao
	for _, d := range r.devolucoes {
		if filter.EmpresaID != nil && d.EmpresaID != *filter.EmpresaID {
			continue
		}
		if filter.VendedorID != nil && d.VendedorID != *filter.VendedorID {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func novaDevolucao(repo *fakeDevolucaoRepo, empresaID, vendedorID id.ID) *devolucao.Devolucao {
	d := &devolucao.Devolucao{
		ID:         id.New(),
		VendedorID: vendedorID,
		EmpresaID:  empresaID,
		Status:     devolucao.StatusAguardandoConfirmacao,
		TotalItens: 1,
		CriadoEm:   time.Now().UTC(),
	}
	repo.devolucoes[d.ID] = d
	return d
}

func devolucaoRouter(repo *fakeDevolucaoRepo, user *appctx.UserContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := devolucao.NewService(repo, estoque.NewService(stubEstoqueRepo{}), fakeTxManager{})
	handler := NewDevolucaoHandler(NewBaseHandler(), svc)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(withUser(user))
	router.GET("/devolucoes", handler.List)
	router.GET("/devolucoes/:id", handler.Get)
	return router
}

func TestDevolucaoGet_HiddenFromOtherTenants(t *testing.T) {
	repo := newFakeDevolucaoRepo()
	empresaID, vendedorID := id.New(), id.New()
	d := novaDevolucao(repo, empresaID, vendedorID)

	solicitante := &appctx.UserContext{
		UserID:     id.New().String(),
		EmpresaID:  empresaID.String(),
		VendedorID: vendedorID.String(),
		Perfil:     appctx.PerfilVendedor,
	}
	rec := doRequest(t, devolucaoRouter(repo, solicitante), "/devolucoes/"+d.ID.String())
	assert.Equal(t, http.StatusOK, rec.Code)

	intruso := &appctx.UserContext{
		UserID:    id.New().String(),
		EmpresaID: id.New().String(),
		Perfil:    appctx.PerfilEmpresa,
	}
	rec = doRequest(t, devolucaoRouter(repo, intruso), "/devolucoes/"+d.ID.String())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDevolucaoList_ScopedToCallerEmpresa(t *testing.T) {
	repo := newFakeDevolucaoRepo()
	empresaID, outraEmpresa := id.New(), id.New()
	novaDevolucao(repo, empresaID, id.New())
	novaDevolucao(repo, outraEmpresa, id.New())

	user := &appctx.UserContext{
		UserID:    id.New().String(),
		EmpresaID: empresaID.String(),
		Perfil:    appctx.PerfilEmpresa,
	}
	router := devolucaoRouter(repo, user)

	rec := doRequest(t, router, "/devolucoes")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, listedCount(t, rec))

	rec = doRequest(t, router, "/devolucoes?empresa_id="+outraEmpresa.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, listedCount(t, rec))
}
