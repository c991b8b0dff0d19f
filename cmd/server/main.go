package main

import (
	"context"
	"log"
	"os"

	"github.com/korssa/gong34/internal/app"
	"github.com/korssa/gong34/internal/buildinfo"
	"github.com/korssa/gong34/internal/config"
	"github.com/korssa/gong34/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	a, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
