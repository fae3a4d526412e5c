package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/todokeeper/internal/client/cli"
	"github.com/dmitrijs2005/todokeeper/internal/client/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.LoadConfig()
	app := cli.New(cfg, os.Stdin, os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		cancel()
		os.Exit(1)
	}
}
