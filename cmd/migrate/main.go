// Command migrate applies the embedded SQL migrations.
//
//	migrate -cmd up
//	migrate -cmd down
//	migrate -cmd status
//	migrate -cmd up-to -arg 00001
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/config"
	"github.com/AriBaderkhan/seraj-store/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	command := flag.String("cmd", "up", "goose command: up, down, status, version, redo, reset, up-to, down-to")
	arg := flag.String("arg", "", "optional argument, e.g. the target version for up-to")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var args []string
	if *arg != "" {
		args = append(args, *arg)
	}
	if err := infra.Migrate(context.Background(), db, *command, args...); err != nil {
		log.Fatal().Err(err).Str("cmd", *command).Msg("migration failed")
	}
	log.Info().Str("cmd", *command).Msg("migration done")
}
