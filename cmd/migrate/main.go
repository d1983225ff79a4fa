package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/siteloc/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down> [dir]")
	}
	dir := "migrations"
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	cfg, err := config.Load("siteloc-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	switch os.Args[1] {
	case "up":
		files := migrationFiles(dir, "*.up.sql")
		runMigrations(ctx, pool, files)
	case "down":
		files := migrationFiles(dir, "*.down.sql")
		// Undo in reverse order.
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
		runMigrations(ctx, pool, files)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func migrationFiles(dir, pattern string) []string {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		log.Fatalf("glob %s: %v", pattern, err)
	}
	if len(files) == 0 {
		log.Fatalf("no migrations matching %s in %s", pattern, dir)
	}
	sort.Strings(files)
	return files
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}

		_, err = pool.Exec(ctx, string(data))
		if err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}
