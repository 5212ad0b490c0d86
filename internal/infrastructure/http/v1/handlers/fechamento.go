package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/fechamento"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/dto"
)

// FechamentoHandler handles daily settlement endpoints.
type FechamentoHandler struct {
	*BaseHandler
	service *fechamento.Service
}

// NewFechamentoHandler creates a new settlement handler.
func NewFechamentoHandler(base *BaseHandler, service *fechamento.Service) *FechamentoHandler {
	return &FechamentoHandler{BaseHandler: base, service: service}
}

// FecharDia handles POST /fechamentos.
func (h *FechamentoHandler) FecharDia(c *gin.Context) {
	var req dto.FecharDiaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	empresaID, ok := h.CurrentEmpresaID(c)
	if !ok {
		return
	}
	vendedorID, ok := h.ParseID(c, req.VendedorID, "vendedor_id")
	if !ok {
		return
	}

	data := time.Now()
	if req.Data != "" {
		parsed, err := time.Parse("2006-01-02", req.Data)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid data").
				WithDetail("field", "data").
				WithDetail("value", req.Data))
			return
		}
		data = parsed
	}

	resultado, err := h.service.FecharDia(c.Request.Context(), empresaID, vendedorID, data)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FecharDiaResponse{
		Success:         true,
		Fechamento:      resultado.Fechamento,
		Totais:          resultado.Totais,
		ComissaoPercent: resultado.ComissaoPercent.String(),
	})
}

// Get handles GET /fechamentos/:vendedorId/:data.
func (h *FechamentoHandler) Get(c *gin.Context) {
	vendedorID, ok := h.ParseID(c, c.Param("vendedorId"), "vendedor_id")
	if !ok {
		return
	}

	data, err := time.Parse("2006-01-02", c.Param("data"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid data").
			WithDetail("field", "data").
			WithDetail("value", c.Param("data")))
		return
	}

	f, err := h.service.GetByVendedorData(c.Request.Context(), vendedorID, data)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, f)
}

// List handles GET /fechamentos/:vendedorId.
func (h *FechamentoHandler) List(c *gin.Context) {
	vendedorID, ok := h.ParseID(c, c.Param("vendedorId"), "vendedor_id")
	if !ok {
		return
	}

	ate := time.Now()
	de := ate.AddDate(0, -1, 0)

	if v := c.Query("de"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid de").WithDetail("value", v))
			return
		}
		de = parsed
	}
	if v := c.Query("ate"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid ate").WithDetail("value", v))
			return
		}
		ate = parsed
	}

	fechamentos, err := h.service.ListByVendedor(c.Request.Context(), vendedorID, de, ate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: fechamentos, Count: len(fechamentos)})
}
