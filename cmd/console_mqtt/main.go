package main

import (
	"log"

	"github.com/relabs-tech/evidence_viewer/internal/app"
	"github.com/relabs-tech/evidence_viewer/internal/config"
)

func main() {
	log.Println("starting evidence-viewer console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("review_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
