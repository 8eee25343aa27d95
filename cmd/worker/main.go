package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"loom/internal/app/bootstrap"
)

// Worker process entrypoint. Runs the sharing outbox relay loop until
// the process receives SIGINT or SIGTERM.
func main() {
	if err := run(); err != nil {
		log.Fatalf("loom worker stopped with error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("loom worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	return app.Run(ctx)
}
