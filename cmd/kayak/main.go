package main

import (
	"context"
	"os/signal"
	"syscall"
	"ulascansenturk/kayak-pipeline/cmd/kayak/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
