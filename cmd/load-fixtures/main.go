package main

import (
	"flag"
	"log"

	"polls/internal/config"
	"polls/internal/db"
)

func main() {
	filePath := flag.String("file", "db/fixtures/questions.yaml", "path to questions fixture")
	migrate := flag.Bool("migrate", false, "run auto-migrations before loading")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if *migrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
	}

	inserted, err := db.LoadFixtures(conn, *filePath)
	if err != nil {
		log.Fatalf("failed to load fixtures: %v", err)
	}
	log.Printf("loaded %d questions from %s", inserted, *filePath)
}
