package main

import (
	"flag"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/noah-isme/sfa-api/pkg/config"
	"github.com/noah-isme/sfa-api/pkg/database"
)

func main() {
	var dir string
	flag.StringVar(&dir, "dir", "migrations", "directory with migration files")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	switch args[0] {
	case "up":
		if err := goose.Up(db.DB, dir); err != nil {
			log.Fatalf("failed to apply migrations: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		if err := goose.Down(db.DB, dir); err != nil {
			log.Fatalf("failed to roll back migration: %v", err)
		}
		fmt.Println("migration rolled back")
	case "status":
		if err := goose.Status(db.DB, dir); err != nil {
			log.Fatalf("failed to report migration status: %v", err)
		}
	default:
		fmt.Printf("unknown command: %s\n", args[0])
		flag.Usage()
	}
}

func usage() {
	fmt.Println("usage: migrator [-dir migrations] <command>")
	fmt.Println("commands:")
	fmt.Println("  up      apply all pending migrations")
	fmt.Println("  down    roll back the latest migration")
	fmt.Println("  status  show migration status")
}
