package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/config"
	"github.com/nimasrn/water-billing/internal/seed"
	"github.com/nimasrn/water-billing/migrations"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/pg"
)

// main.go --migrate [--dir=./migrations] --seed [--env=.env]
func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	migrate, runSeed := hasFlag("--migrate"), hasFlag("--seed")
	if !migrate && !runSeed {
		migrate = true
	}

	if migrate {
		if err = runMigrations(); err != nil {
			logger.Error("migration: error running migrations", "error", err)
			os.Exit(1)
		}
	}

	if runSeed {
		db, err := pg.CreateReadWrite(config.Get().WriteDB(), config.Get().WriteDB(), false)
		if err != nil {
			logger.Error("failed connecting to pg", "error", err)
			os.Exit(1)
		}
		if _, err = seed.New(db, config.Get().BillDueDays).Run(context.Background(), time.Now()); err != nil {
			logger.Error("seed: error seeding database", "error", err)
			os.Exit(1)
		}
	}
}

// runMigrations uses --dir when given, the embedded files otherwise.
func runMigrations() error {
	if dir := getMigrationPath(); dir != "" {
		return pg.Migrate(config.Get().WriteDB(), nil, dir)
	}
	return pg.Migrate(config.Get().WriteDB(), migrations.FS, ".")
}

func hasFlag(name string) bool {
	for _, v := range os.Args[1:] {
		if v == name {
			return true
		}
	}
	return false
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed migration dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
