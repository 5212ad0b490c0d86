package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	appctx "github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/context"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/devolucao"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/dto"
)

// DevolucaoHandler handles inventory return endpoints.
type DevolucaoHandler struct {
	*BaseHandler
	service *devolucao.Service
}

// NewDevolucaoHandler creates a new return handler.
func NewDevolucaoHandler(base *BaseHandler, service *devolucao.Service) *DevolucaoHandler {
	return &DevolucaoHandler{BaseHandler: base, service: service}
}

// Solicitar handles POST /devolucoes.
func (h *DevolucaoHandler) Solicitar(c *gin.Context) {
	var req dto.SolicitarDevolucaoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	vendedorID, ok := h.CurrentVendedorID(c)
	if !ok {
		return
	}
	empresaID, ok := h.ParseID(c, req.EmpresaID, "empresa_id")
	if !ok {
		return
	}

	itens := make([]devolucao.ItemParams, 0, len(req.Itens))
	for _, item := range req.Itens {
		produtoID, ok := h.ParseID(c, item.ProdutoID, "produto_id")
		if !ok {
			return
		}
		itens = append(itens, devolucao.ItemParams{
			ProdutoID:  produtoID,
			Quantidade: item.Quantidade,
		})
	}

	d, err := h.service.Solicitar(c.Request.Context(), devolucao.SolicitarParams{
		VendedorID: vendedorID,
		EmpresaID:  empresaID,
		Observacao: req.Observacao,
		Itens:      itens,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, d)
}

// Confirmar handles POST /devolucoes/:id/confirmar.
func (h *DevolucaoHandler) Confirmar(c *gin.Context) {
	devolucaoID, ok := h.ParamID(c)
	if !ok {
		return
	}
	empresaID, ok := h.CurrentEmpresaID(c)
	if !ok {
		return
	}
	atorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	d, err := h.service.Confirmar(c.Request.Context(), devolucaoID, empresaID, atorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Recusar handles POST /devolucoes/:id/recusar.
func (h *DevolucaoHandler) Recusar(c *gin.Context) {
	devolucaoID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.RecusarDevolucaoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	empresaID, ok := h.CurrentEmpresaID(c)
	if !ok {
		return
	}
	atorID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	d, err := h.service.Recusar(c.Request.Context(), devolucaoID, empresaID, atorID, req.Motivo)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// Get handles GET /devolucoes/:id. The row is visible only to the target
// company or the requesting seller; anyone else gets not found.
func (h *DevolucaoHandler) Get(c *gin.Context) {
	devolucaoID, ok := h.ParamID(c)
	if !ok {
		return
	}
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	d, err := h.service.GetByID(c.Request.Context(), devolucaoID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !h.VisivelPara(user, d.EmpresaID, d.VendedorID) {
		h.Error(c, apperror.NewNotFound("devolucao", devolucaoID))
		return
	}

	h.OK(c, d)
}

// List handles GET /devolucoes, always scoped to the caller: sellers list
// their own returns, company users their company's.
func (h *DevolucaoHandler) List(c *gin.Context) {
	filter := devolucao.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("status"); v != "" {
		status := devolucao.Status(v)
		filter.Status = &status
	}

	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	if user.Perfil == appctx.PerfilVendedor {
		vendedorID, ok := h.CurrentVendedorID(c)
		if !ok {
			return
		}
		filter.VendedorID = &vendedorID
	} else {
		empresaID, ok := h.CurrentEmpresaID(c)
		if !ok {
			return
		}
		filter.EmpresaID = &empresaID
		if v := c.Query("vendedor_id"); v != "" {
			vendedorID, ok := h.ParseID(c, v, "vendedor_id")
			if !ok {
				return
			}
			filter.VendedorID = &vendedorID
		}
	}

	devolucoes, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: devolucoes, Count: len(devolucoes)})
}
