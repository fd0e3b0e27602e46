// Package main is the production entry point for the ringlight engine:
// dual-stem audio playback driving the segmented-ring visualization.
//
// Build:
//
//	go build -o build/ringlight ./cmd/ringlight
//
// Run:
//
//	RINGLIGHT_MANIFEST=playlist.json ./build/ringlight
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/stellarsound/ringlight/internal/app"
)

func main() {
	config := app.DefaultConfig()

	application, err := app.NewApplication(config)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Printf("Application error: %v", err)
	}
}
