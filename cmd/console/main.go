package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ddanshin/guildvault/internal/console"
	"github.com/ddanshin/guildvault/internal/console/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, err := console.NewApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		if errors.Is(err, console.ErrInvalidMasterPassword) {
			fmt.Fprintln(os.Stderr, "Invalid master password.")
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

}
