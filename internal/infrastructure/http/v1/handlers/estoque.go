package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/dto"
)

// EstoqueHandler handles seller stock endpoints.
type EstoqueHandler struct {
	*BaseHandler
	service *estoque.Service
}

// NewEstoqueHandler creates a new stock handler.
func NewEstoqueHandler(base *BaseHandler, service *estoque.Service) *EstoqueHandler {
	return &EstoqueHandler{BaseHandler: base, service: service}
}

// Saldos handles GET /estoque/saldos. Sellers see their own balances;
// company users pass vendedor_id.
func (h *EstoqueHandler) Saldos(c *gin.Context) {
	vendedorID, ok := h.resolveVendedor(c)
	if !ok {
		return
	}

	saldos, err := h.service.ListSaldos(c.Request.Context(), vendedorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: saldos, Count: len(saldos)})
}

// SaldosEmpresa handles GET /estoque/empresa, listing the caller company's
// on-hand stock, including quantities returned by confirmed devolucoes.
func (h *EstoqueHandler) SaldosEmpresa(c *gin.Context) {
	empresaID, ok := h.CurrentEmpresaID(c)
	if !ok {
		return
	}

	saldos, err := h.service.ListSaldosEmpresa(c.Request.Context(), empresaID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: saldos, Count: len(saldos)})
}

// Logs handles GET /estoque/logs/:id, returning the audit trail of one
// transfer or return.
func (h *EstoqueHandler) Logs(c *gin.Context) {
	referenciaID, ok := h.ParamID(c)
	if !ok {
		return
	}

	logs, err := h.service.ListLogs(c.Request.Context(), referenciaID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: logs, Count: len(logs)})
}

func (h *EstoqueHandler) resolveVendedor(c *gin.Context) (id.ID, bool) {
	if v := c.Query("vendedor_id"); v != "" {
		return h.ParseID(c, v, "vendedor_id")
	}
	return h.CurrentVendedorID(c)
}
