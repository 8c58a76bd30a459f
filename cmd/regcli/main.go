// cmd/regcli/main.go
//
// regcli - terminal front end for the registration form.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/yanizio/regform/internal/cli"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCmd(&cli.App{}).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrAborted):
		os.Exit(130)
	default:
		fmt.Fprintln(os.Stderr, "regcli:", err)
		os.Exit(1)
	}
}
