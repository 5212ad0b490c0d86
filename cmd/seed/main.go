// Package main provides a CLI tool for seeding the database with demo data:
// one company with its owner, two sellers, a product list, company stock and
// a commission kit assigned for today.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/core/id"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/internal/infrastructure/storage/postgres"
	"github.com/lucasnegao231193-collab/vendr-app-sub002/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	empresaID, vendedorIDs, err := seedEmpresa(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed empresa", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	inserter := postgres.NewBatchInserter(txManager)

	if err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		produtoIDs, err := seedProdutos(ctx, inserter, empresaID)
		if err != nil {
			return err
		}
		if err := seedEstoqueEmpresa(ctx, txManager, empresaID, produtoIDs); err != nil {
			return err
		}
		if err := seedKit(ctx, txManager, empresaID, vendedorIDs[0]); err != nil {
			return err
		}
		if os.Getenv("SEED_DEMO_VENDAS") == "true" {
			return seedVendas(ctx, inserter, empresaID, vendedorIDs)
		}
		return nil
	}); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Info("seeding completed successfully")
}

// seedEmpresa creates the owner user, the company and two sellers with their
// own users. Re-running finds the existing rows by email.
func seedEmpresa(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, []id.ID, error) {
	ownerEmail := os.Getenv("SEED_EMPRESA_EMAIL")
	if ownerEmail == "" {
		ownerEmail = "dono@venlo.dev"
	}

	var empresaID id.ID
	err := pool.Pool.QueryRow(ctx, `
		SELECT e.id FROM empresas e JOIN usuarios u ON u.id = e.usuario_id WHERE u.email = $1
	`, ownerEmail).Scan(&empresaID)
	if err == nil {
		vendedorIDs, err := existingVendedores(ctx, pool, empresaID)
		if err != nil {
			return id.Nil(), nil, err
		}
		log.Infow("empresa already seeded", "empresa_id", empresaID)
		return empresaID, vendedorIDs, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), nil, fmt.Errorf("check empresa exists: %w", err)
	}

	ownerID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO usuarios (id, email, nome, perfil) VALUES ($1, $2, $3, 'empresa')
	`, ownerID, ownerEmail, "Dono Demo")
	if err != nil {
		return id.Nil(), nil, fmt.Errorf("insert owner: %w", err)
	}

	empresaID = id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO empresas (id, usuario_id, nome) VALUES ($1, $2, $3)
	`, empresaID, ownerID, "Empresa Demo")
	if err != nil {
		return id.Nil(), nil, fmt.Errorf("insert empresa: %w", err)
	}

	sellers := []struct {
		email    string
		nome     string
		comissao string
	}{
		{"maria@venlo.dev", "Maria Vendedora", "0.08"},
		{"joao@venlo.dev", "João Vendedor", "0.05"},
	}

	vendedorIDs := make([]id.ID, 0, len(sellers))
	for _, s := range sellers {
		userID := id.New()
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO usuarios (id, email, nome, perfil) VALUES ($1, $2, $3, 'vendedor')
		`, userID, s.email, s.nome)
		if err != nil {
			return id.Nil(), nil, fmt.Errorf("insert seller user %s: %w", s.email, err)
		}

		vendedorID := id.New()
		comissao, err := decimal.NewFromString(s.comissao)
		if err != nil {
			return id.Nil(), nil, fmt.Errorf("parse comissao: %w", err)
		}
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO vendedores (id, usuario_id, empresa_id, nome, comissao_padrao)
			VALUES ($1, $2, $3, $4, $5)
		`, vendedorID, userID, empresaID, s.nome, comissao)
		if err != nil {
			return id.Nil(), nil, fmt.Errorf("insert vendedor %s: %w", s.nome, err)
		}
		vendedorIDs = append(vendedorIDs, vendedorID)
	}

	log.Infow("empresa created", "empresa_id", empresaID, "vendedores", len(vendedorIDs))
	return empresaID, vendedorIDs, nil
}

func existingVendedores(ctx context.Context, pool *postgres.Pool, empresaID id.ID) ([]id.ID, error) {
	rows, err := pool.Pool.Query(ctx, `
		SELECT id FROM vendedores WHERE empresa_id = $1 ORDER BY criado_em
	`, empresaID)
	if err != nil {
		return nil, fmt.Errorf("list vendedores: %w", err)
	}
	defer rows.Close()

	var out []id.ID
	for rows.Next() {
		var vendedorID id.ID
		if err := rows.Scan(&vendedorID); err != nil {
			return nil, err
		}
		out = append(out, vendedorID)
	}
	if len(out) == 0 {
		return nil, errors.New("empresa exists but has no vendedores")
	}
	return out, rows.Err()
}

func seedProdutos(ctx context.Context, inserter *postgres.BatchInserter, empresaID id.ID) ([]id.ID, error) {
	produtos := []struct {
		nome  string
		preco string
	}{
		{"Camiseta básica", "49.90"},
		{"Boné trucker", "39.90"},
		{"Caneca esmaltada", "29.90"},
		{"Garrafa térmica", "89.90"},
		{"Mochila urbana", "159.90"},
	}

	produtoIDs := make([]id.ID, 0, len(produtos))
	rows := make([][]any, 0, len(produtos))
	for _, p := range produtos {
		preco, err := decimal.NewFromString(p.preco)
		if err != nil {
			return nil, fmt.Errorf("parse preco: %w", err)
		}
		produtoID := id.New()
		produtoIDs = append(produtoIDs, produtoID)
		rows = append(rows, []any{produtoID, empresaID, p.nome, preco})
	}

	if _, err := inserter.CopyFromSlice(ctx, "produtos",
		[]string{"id", "empresa_id", "nome", "preco"}, rows); err != nil {
		return nil, fmt.Errorf("copy produtos: %w", err)
	}
	return produtoIDs, nil
}

func seedEstoqueEmpresa(ctx context.Context, txm *postgres.TxManager, empresaID id.ID, produtoIDs []id.ID) error {
	querier := txm.GetQuerier(ctx)
	for _, produtoID := range produtoIDs {
		_, err := querier.Exec(ctx, `
			INSERT INTO estoque_empresa (empresa_id, produto_id, quantidade) VALUES ($1, $2, 100)
		`, empresaID, produtoID)
		if err != nil {
			return fmt.Errorf("insert estoque_empresa: %w", err)
		}
	}
	return nil
}

func seedKit(ctx context.Context, txm *postgres.TxManager, empresaID, vendedorID id.ID) error {
	querier := txm.GetQuerier(ctx)

	kitID := id.New()
	comissao := decimal.RequireFromString("0.10")
	_, err := querier.Exec(ctx, `
		INSERT INTO kits (id, empresa_id, nome, comissao_percent) VALUES ($1, $2, $3, $4)
	`, kitID, empresaID, "Kit promocional", comissao)
	if err != nil {
		return fmt.Errorf("insert kit: %w", err)
	}

	_, err = querier.Exec(ctx, `
		INSERT INTO kits_atribuidos (id, kit_id, vendedor_id, data) VALUES ($1, $2, $3, CURRENT_DATE)
	`, id.New(), kitID, vendedorID)
	if err != nil {
		return fmt.Errorf("insert kit atribuido: %w", err)
	}
	return nil
}

// seedVendas writes a spread of today's sales so a settlement run has
// something to aggregate.
func seedVendas(ctx context.Context, inserter *postgres.BatchInserter, empresaID id.ID, vendedorIDs []id.ID) error {
	metodos := []string{"pix", "dinheiro", "debito", "credito"}
	now := time.Now().UTC()

	rows := make([][]any, 0, len(vendedorIDs)*len(metodos))
	for _, vendedorID := range vendedorIDs {
		for i, metodo := range metodos {
			total := decimal.NewFromInt(int64(50 + 25*i))
			rows = append(rows, []any{
				id.New(), vendedorID, empresaID, total, metodo,
				now.Add(-time.Duration(i) * time.Hour),
			})
		}
	}

	if _, err := inserter.CopyFromSlice(ctx, "vendas",
		[]string{"id", "vendedor_id", "empresa_id", "total", "metodo_pagamento", "data_venda"}, rows); err != nil {
		return fmt.Errorf("copy vendas: %w", err)
	}
	return nil
}
