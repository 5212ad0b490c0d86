// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/caixa"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/devolucao"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/fechamento"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/transferencia"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/handlers"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1/middleware"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool, used by health checks
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Domain services
	CaixaService         *caixa.Service
	FechamentoService    *fechamento.Service
	TransferenciaService *transferencia.Service
	DevolucaoService     *devolucao.Service
	EstoqueService       *estoque.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1, JWT protected
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))

	baseHandler := handlers.NewBaseHandler()

	// --- CAIXAS ---
	{
		handler := handlers.NewCaixaHandler(baseHandler, cfg.CaixaService)
		caixas := v1.Group("/caixas")
		caixas.POST("", handler.Abrir)
		caixas.GET("", handler.List)
		caixas.POST("/movimentacoes", handler.RegistrarMovimentacao)
		caixas.GET("/:id", handler.Detalhar)
		caixas.POST("/:id/fechar", handler.Fechar)
		caixas.PATCH("/:id/observacao", handler.AtualizarObservacao)
	}

	// --- FECHAMENTOS ---
	{
		handler := handlers.NewFechamentoHandler(baseHandler, cfg.FechamentoService)
		fechamentos := v1.Group("/fechamentos")
		fechamentos.POST("", handler.FecharDia)
		fechamentos.GET("/:vendedorId", handler.List)
		fechamentos.GET("/:vendedorId/:data", handler.Get)
	}

	// --- TRANSFERENCIAS ---
	{
		handler := handlers.NewTransferenciaHandler(baseHandler, cfg.TransferenciaService)
		transferencias := v1.Group("/transferencias")
		transferencias.POST("", handler.Criar)
		transferencias.GET("", handler.List)
		transferencias.GET("/:id", handler.Get)
		transferencias.POST("/:id/aceitar", handler.Aceitar)
		transferencias.POST("/:id/recusar", handler.Recusar)
		transferencias.POST("/:id/cancelar", handler.Cancelar)
	}

	// --- DEVOLUCOES ---
	{
		handler := handlers.NewDevolucaoHandler(baseHandler, cfg.DevolucaoService)
		devolucoes := v1.Group("/devolucoes")
		devolucoes.POST("", handler.Solicitar)
		devolucoes.GET("", handler.List)
		devolucoes.GET("/:id", handler.Get)
		devolucoes.POST("/:id/confirmar", handler.Confirmar)
		devolucoes.POST("/:id/recusar", handler.Recusar)
	}

	// --- ESTOQUE ---
	{
		handler := handlers.NewEstoqueHandler(baseHandler, cfg.EstoqueService)
		estoqueGroup := v1.Group("/estoque")
		estoqueGroup.GET("/saldos", handler.Saldos)
		estoqueGroup.GET("/empresa", handler.SaldosEmpresa)
		estoqueGroup.GET("/logs/:id", handler.Logs)
	}

	return router
}
