package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	appctx "github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/context"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/transferencia"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/dto"
)

// TransferenciaHandler handles inventory transfer endpoints.
type TransferenciaHandler struct {
	*BaseHandler
	service *transferencia.Service
}

// NewTransferenciaHandler creates a new transfer handler.
func NewTransferenciaHandler(base *BaseHandler, service *transferencia.Service) *TransferenciaHandler {
	return &TransferenciaHandler{BaseHandler: base, service: service}
}

// Criar handles POST /transferencias.
func (h *TransferenciaHandler) Criar(c *gin.Context) {
	var req dto.CriarTransferenciaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	empresaID, ok := h.CurrentEmpresaID(c)
	if !ok {
		return
	}
	if req.EmpresaID != "" && req.EmpresaID != empresaID.String() {
		h.Error(c, apperror.NewForbidden("empresa_id does not match authenticated empresa"))
		return
	}

	vendedorID, ok := h.ParseID(c, req.VendedorID, "vendedor_id")
	if !ok {
		return
	}

	itens := make([]transferencia.ItemParams, 0, len(req.Itens))
	for _, item := range req.Itens {
		produtoID, ok := h.ParseID(c, item.ProdutoID, "produto_id")
		if !ok {
			return
		}
		itens = append(itens, transferencia.ItemParams{
			ProdutoID:     produtoID,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
		})
	}

	t, err := h.service.Criar(c.Request.Context(), transferencia.CriarParams{
		EmpresaID:  empresaID,
		VendedorID: vendedorID,
		Observacao: req.Observacao,
		Itens:      itens,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, t)
}

// Aceitar handles POST /transferencias/:id/aceitar.
func (h *TransferenciaHandler) Aceitar(c *gin.Context) {
	transferenciaID, ok := h.ParamID(c)
	if !ok {
		return
	}
	vendedorID, ok := h.CurrentVendedorID(c)
	if !ok {
		return
	}

	t, err := h.service.Aceitar(c.Request.Context(), transferenciaID, vendedorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Recusar handles POST /transferencias/:id/recusar.
func (h *TransferenciaHandler) Recusar(c *gin.Context) {
	transferenciaID, ok := h.ParamID(c)
	if !ok {
		return
	}
	vendedorID, ok := h.CurrentVendedorID(c)
	if !ok {
		return
	}

	t, err := h.service.Recusar(c.Request.Context(), transferenciaID, vendedorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Cancelar handles POST /transferencias/:id/cancelar.
func (h *TransferenciaHandler) Cancelar(c *gin.Context) {
	transferenciaID, ok := h.ParamID(c)
	if !ok {
		return
	}
	empresaID, ok := h.CurrentEmpresaID(c)
	if !ok {
		return
	}

	t, err := h.service.Cancelar(c.Request.Context(), transferenciaID, empresaID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Get handles GET /transferencias/:id. The row is visible only to its
// issuing company or its receiving seller; anyone else gets not found.
func (h *TransferenciaHandler) Get(c *gin.Context) {
	transferenciaID, ok := h.ParamID(c)
	if !ok {
		return
	}
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), transferenciaID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if !h.VisivelPara(user, t.EmpresaID, t.VendedorID) {
		h.Error(c, apperror.NewNotFound("transferencia", transferenciaID))
		return
	}

	h.OK(c, t)
}

// List handles GET /transferencias, always scoped to the caller: sellers
// list their own transfers, company users their company's.
func (h *TransferenciaHandler) List(c *gin.Context) {
	filter := transferencia.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("status"); v != "" {
		status := transferencia.Status(v)
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

	transferencias, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: transferencias, Count: len(transferencias)})
}
