// Package main provides CLI for database schema management.
// Usage: migrate up
//        migrate down
//        migrate status
//        migrate create-db
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const migrationsDir = "db/migrations"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "up":
		runGoose("up")
	case "down":
		runGoose("down")
	case "status":
		runGoose("status")
	case "create-db":
		createDatabase(context.Background())
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Venlo Database Migration CLI

Usage:
  migrate <command>

Commands:
  up         Apply pending migrations
  down       Roll back the last migration
  status     Show migration status
  create-db  Create the database if it does not exist
  help       Show this help

Environment Variables:
  DATABASE_URL        Connection string for the application database (required)
  POSTGRES_ADMIN_URL  Admin connection used by create-db (optional)

Examples:
  migrate create-db
  migrate up
  migrate status`)
}

func databaseURL() string {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Println("Error: DATABASE_URL environment variable is required")
		os.Exit(1)
	}
	return dsn
}

func runGoose(command string) {
	dsn := databaseURL()

	cmd := exec.Command("goose", "-dir", migrationsDir, "postgres", dsn, command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Printf("Error: goose %s failed: %v\n", command, err)
		os.Exit(1)
	}
}

func createDatabase(ctx context.Context) {
	dsn := databaseURL()

	dbName := dsn[strings.LastIndex(dsn, "/")+1:]
	if i := strings.Index(dbName, "?"); i >= 0 {
		dbName = dbName[:i]
	}
	if dbName == "" {
		fmt.Println("Error: could not derive database name from DATABASE_URL")
		os.Exit(1)
	}

	adminDSN := os.Getenv("POSTGRES_ADMIN_URL")
	if adminDSN == "" {
		// Connect to the maintenance database on the same server.
		adminDSN = strings.Replace(dsn, "/"+dbName, "/postgres", 1)
	}

	pool, err := pgxpool.New(ctx, adminDSN)
	if err != nil {
		fmt.Printf("Error connecting as admin: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName))
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			fmt.Printf("Database %s already exists\n", dbName)
			return
		}
		fmt.Printf("Error creating database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Database %s created\n", dbName)
}
