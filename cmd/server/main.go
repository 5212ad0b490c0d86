// Package main is the entry point for the Venlo API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/config"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/auth"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/caixa"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/devolucao"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/estoque"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/fechamento"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/domain/transferencia"
	v1 "github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/http/v1"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres/caixa_repo"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres/devolucao_repo"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres/estoque_repo"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres/fechamento_repo"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres/transfer_repo"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting venlo server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	poolCfg.MaxConns = cfg.DB.MaxConns
	poolCfg.MinConns = cfg.DB.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- JWT ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Repositories ---
	caixaRepo := caixa_repo.NewCaixaRepo(txManager)
	fechamentoRepo := fechamento_repo.NewFechamentoRepo(txManager)
	vendasAggregator := fechamento_repo.NewVendasAggregator(txManager)
	kitRepo := fechamento_repo.NewKitRepo(txManager)
	transferRepo := transfer_repo.NewTransferRepo(txManager)
	devolucaoRepo := devolucao_repo.NewDevolucaoRepo(txManager)
	estoqueRepo, err := estoque_repo.NewEstoqueRepo(txManager)
	if err != nil {
		log.Fatalw("failed to create estoque repo", "error", err)
	}

	// --- Services ---
	estoqueService := estoque.NewService(estoqueRepo)
	caixaService := caixa.NewService(caixaRepo, txManager)
	fechamentoService := fechamento.NewService(fechamentoRepo, vendasAggregator, kitRepo, txManager)
	transferenciaService := transferencia.NewService(transferRepo, estoqueService, txManager)
	devolucaoService := devolucao.NewService(devolucaoRepo, estoqueService, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:                 pool,
		Logger:               log,
		JWTValidator:         jwtService,
		CaixaService:         caixaService,
		FechamentoService:    fechamentoService,
		TransferenciaService: transferenciaService,
		DevolucaoService:     devolucaoService,
		EstoqueService:       estoqueService,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
