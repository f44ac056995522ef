package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkwellhq/blockview/internal/infrastructure/config"
	"github.com/inkwellhq/blockview/internal/infrastructure/server"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	eventsURL := flag.String("host-events", "", "View host events URL (overrides VIEWHOST_EVENTS_URL)")
	controlURL := flag.String("host-control", "", "View host control URL (overrides VIEWHOST_CONTROL_URL)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *eventsURL != "" {
		cfg.Host.EventsURL = *eventsURL
	}
	if *controlURL != "" {
		cfg.Host.ControlURL = *controlURL
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
