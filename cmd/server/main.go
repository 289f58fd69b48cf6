package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := &cli.Command{
		Name:  "taskroom",
		Usage: "Collaborative to-do backend with real-time workspace rooms",
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.ErrorContext(ctx, "fatal", "error", err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Printf("%s\n", banner)
}

const banner = `
████████╗ █████╗ ███████╗██╗  ██╗██████╗  ██████╗  ██████╗ ███╗   ███╗
╚══██╔══╝██╔══██╗██╔════╝██║ ██╔╝██╔══██╗██╔═══██╗██╔═══██╗████╗ ████║
   ██║   ███████║███████╗█████╔╝ ██████╔╝██║   ██║██║   ██║██╔████╔██║
   ██║   ██╔══██║╚════██║██╔═██╗ ██╔══██╗██║   ██║██║   ██║██║╚██╔╝██║
   ██║   ██║  ██║███████║██║  ██╗██║  ██║╚██████╔╝╚██████╔╝██║ ╚═╝ ██║
   ╚═╝   ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝  ╚═════╝ ╚═╝     ╚═╝
`
