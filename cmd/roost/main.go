package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/simonhull/firebird-suite/roost/internal/commands"
	"github.com/simonhull/firebird-suite/roost/pkg/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.RootCmd().ExecuteContext(ctx); err != nil {
		output.Error(err.Error())
		stop()
		os.Exit(1)
	}
}
