// Command migrate applies the embedded SQL migrations.
// Usage: migrate up | down | status | version | redo | reset
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Ayush3323/crm-backend/internal/config"
	"github.com/Ayush3323/crm-backend/internal/infra"

	"github.com/rs/zerolog/log"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|down|status|version|redo|reset> [args]")
	}
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.NewLogger(cfg)

	if cfg.DBDriver == infra.DriverMySQL {
		log.Fatal().Msg("SQL migrations target postgres; mysql schemas are created by AutoMigrate")
	}

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := infra.Migrate(context.Background(), db, args[0], args[1:]...); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Str("command", args[0]).Msg("migration finished")
}
