package main

import (
	"context"
	"fmt"
	"os"

	"github.com/korssa/gong34/internal/cli"
	"github.com/korssa/gong34/internal/config"
)

func main() {

	cfg := config.LoadConfig()
	app := cli.NewApp(cfg, os.Stdout)

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
