package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/apperror"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/caixa"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/dto"
)

// CaixaHandler handles cash register endpoints.
type CaixaHandler struct {
	*BaseHandler
	service *caixa.Service
}

// NewCaixaHandler creates a new cash register handler.
func NewCaixaHandler(base *BaseHandler, service *caixa.Service) *CaixaHandler {
	return &CaixaHandler{BaseHandler: base, service: service}
}

// Abrir handles POST /caixas.
func (h *CaixaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCaixaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	usuarioID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	empresaID, ok := h.optionalID(c, req.EmpresaID, "empresa_id")
	if !ok {
		return
	}
	vendedorID, ok := h.optionalID(c, req.VendedorID, "vendedor_id")
	if !ok {
		return
	}

	cx, err := h.service.Abrir(c.Request.Context(), caixa.AbrirParams{
		Escopo:       caixa.Escopo(req.Escopo),
		UsuarioID:    usuarioID,
		EmpresaID:    empresaID,
		VendedorID:   vendedorID,
		SaldoInicial: req.SaldoInicial,
		Observacao:   req.Observacao,
		Fuso:         req.Fuso,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cx)
}

// RegistrarMovimentacao handles POST /caixas/movimentacoes.
func (h *CaixaHandler) RegistrarMovimentacao(c *gin.Context) {
	var req dto.MovimentacaoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	usuarioID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	caixaID, ok := h.ParseID(c, req.CaixaID, "caixa_id")
	if !ok {
		return
	}

	vendaID, ok := h.optionalID(c, req.VendaID, "venda_id")
	if !ok {
		return
	}
	vendaServicoID, ok := h.optionalID(c, req.VendaServicoID, "venda_servico_id")
	if !ok {
		return
	}
	devolucaoID, ok := h.optionalID(c, req.DevolucaoID, "devolucao_id")
	if !ok {
		return
	}
	transferenciaID, ok := h.optionalID(c, req.TransferenciaID, "transferencia_id")
	if !ok {
		return
	}

	mov, err := h.service.RegistrarMovimentacao(c.Request.Context(), caixa.MovimentacaoParams{
		CaixaID:         caixaID,
		UsuarioID:       usuarioID,
		Tipo:            caixa.TipoMovimentacao(req.Tipo),
		Metodo:          caixa.MetodoPagamento(req.Metodo),
		Valor:           req.Valor,
		Descricao:       req.Descricao,
		VendaID:         vendaID,
		VendaServicoID:  vendaServicoID,
		DevolucaoID:     devolucaoID,
		TransferenciaID: transferenciaID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, mov)
}

// Fechar handles POST /caixas/:id/fechar.
func (h *CaixaHandler) Fechar(c *gin.Context) {
	caixaID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.FecharCaixaRequest
	if !h.BindJSON(c, &req) {
		return
	}

	usuarioID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	cx, err := h.service.Fechar(c.Request.Context(), caixaID, usuarioID, req.SaldoFechamento)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cx)
}

// AtualizarObservacao handles PATCH /caixas/:id/observacao.
func (h *CaixaHandler) AtualizarObservacao(c *gin.Context) {
	caixaID, ok := h.ParamID(c)
	if !ok {
		return
	}

	var req dto.ObservacaoRequest
	if !h.BindJSON(c, &req) {
		return
	}

	usuarioID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	cx, err := h.service.AtualizarObservacao(c.Request.Context(), caixaID, usuarioID, req.Observacao)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cx)
}

// Detalhar handles GET /caixas/:id.
func (h *CaixaHandler) Detalhar(c *gin.Context) {
	caixaID, ok := h.ParamID(c)
	if !ok {
		return
	}

	usuarioID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	detalhe, err := h.service.Detalhar(c.Request.Context(), caixaID, usuarioID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, detalhe)
}

// List handles GET /caixas.
func (h *CaixaHandler) List(c *gin.Context) {
	usuarioID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	filter := caixa.ListFilter{
		UsuarioID: usuarioID,
		Limit:     h.ParseIntQuery(c, "limit", 50),
		Offset:    h.ParseIntQuery(c, "offset", 0),
	}

	if v := c.Query("status"); v != "" {
		status := caixa.Status(v)
		filter.Status = &status
	}
	if v := c.Query("escopo"); v != "" {
		escopo := caixa.Escopo(v)
		filter.Escopo = &escopo
	}
	if v := c.Query("dia_de"); v != "" {
		dia, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dia_de").WithDetail("value", v))
			return
		}
		filter.DiaDe = &dia
	}
	if v := c.Query("dia_ate"); v != "" {
		dia, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dia_ate").WithDetail("value", v))
			return
		}
		filter.DiaAte = &dia
	}

	caixas, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: caixas, Count: len(caixas)})
}

// optionalID parses an optional UUID field, nil when absent.
func (h *CaixaHandler) optionalID(c *gin.Context, value *string, field string) (*id.ID, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	parsed, ok := h.ParseID(c, *value, field)
	if !ok {
		return nil, false
	}
	return &parsed, true
}
