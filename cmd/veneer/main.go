// Command veneer generates the members declared by veneer directives.
//
//	//go:generate go run github.com/syssam/veneer/cmd/veneer generate
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/syssam/veneer/cmd/veneer/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
