package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"numgate/internal/app"
	"numgate/internal/httpserver"
)

func main() {
	var (
		envFile  = ".env"
		port     string
		logLevel string
	)

	cliApp := &cli.App{
		Name:  "numgate",
		Usage: "Credentialed numeric operations API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "dotenv file loaded before reading the environment",
				Value:       envFile,
				Destination: &envFile,
			},
			&cli.StringFlag{
				Name:        "port",
				Usage:       "Port to listen on (overrides PORT)",
				Destination: &port,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level (overrides LOG_LEVEL)",
				Destination: &logLevel,
			},
		},
		Action: func(c *cli.Context) error {
			if port != "" {
				if err := os.Setenv("PORT", port); err != nil {
					return err
				}
			}
			if logLevel != "" {
				if err := os.Setenv("LOG_LEVEL", logLevel); err != nil {
					return err
				}
			}

			runtime, err := app.Build(app.Options{LoadDotEnv: true, EnvFile: envFile})
			if err != nil {
				return err
			}
			defer runtime.Close()

			addr := fmt.Sprintf(":%s", runtime.Config.Port)
			return httpserver.Serve(c.Context, runtime.Logger, addr, runtime.Handler)
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("application failed")
		cancel()
		os.Exit(1)
	}
}
