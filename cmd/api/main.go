package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ovaphlow/pitchfork/service-shelter-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	app := &cli.App{
		Name:  "service-shelter",
		Usage: "Shelter directory API",
		Commands: []*cli.Command{
			serveCmd(sugar),
			migrateCmd(sugar),
			seedAdminCmd(sugar),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		sugar.Errorw("application failed", "err", err)
		_ = lg.Sync()
		os.Exit(1)
	}
}
