// Command sitecache serves the site's content datasets from the priority cache
// and keeps them fresh from the hosted backend.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/unkn0wn-root/prioritycache/internal/app"
	"github.com/unkn0wn-root/prioritycache/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("sitecache: %v", err)
	}
}
