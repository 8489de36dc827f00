package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	keepercmd "github.com/louisbranch/worldkeeper/internal/cmd/keeper"
)

func main() {
	cfg, err := keepercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[KEEPER] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := keepercmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
