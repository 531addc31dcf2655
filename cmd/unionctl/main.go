package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	unionctlcmd "github.com/usstm/unionclient/internal/cmd/unionctl"
	"github.com/usstm/unionclient/internal/platform/config"
)

func main() {
	cfg, err := unionctlcmd.ParseConfig(flag.CommandLine, os.Args[1:], func(key string) (string, bool) {
		value, ok := os.LookupEnv(key)
		return value, ok
	})
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	log.SetPrefix("[UNIONCTL] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := unionctlcmd.Run(ctx, cfg); err != nil {
		config.Exitf("Error: %v", err)
	}
}
