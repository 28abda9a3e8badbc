package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"polls/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	source := flag.String("source", "file://db/migrations", "migration source URL")
	down := flag.Bool("down", false, "roll back one migration instead of applying all")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	if err := run(*source, config.Load().DatabaseURL, *down); err != nil {
		log.Fatal(err)
	}
}

func run(source, dsn string, down bool) (err error) {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}
	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("migration setup failed: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if down {
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("database rollback failed: %w", err)
		}
		log.Println("rolled back one migration")
		return nil
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database migration failed: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	log.Printf("database migrations applied version=%d dirty=%t", version, dirty)
	return nil
}
