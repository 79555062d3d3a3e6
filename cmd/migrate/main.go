package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Println("DATABASE_URL not set")
		os.Exit(1)
	}

	file := "migrations/001_init.sql"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	sql, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Failed to read migration: %v\n", err)
		os.Exit(1)
	}

	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Applied %s\n", file)
}
