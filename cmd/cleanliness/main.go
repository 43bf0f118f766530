package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/davebur/mastodon-cleanliness/internal/cli"
	"github.com/davebur/mastodon-cleanliness/internal/config"
)

func main() {
	if err := godotenv.Load(config.DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Fatalf("load env: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx)
	cancel()
	os.Exit(code)
}
