package main

import (
	"log"

	"github.com/ngenohkevin/taskdeck/config"
	"github.com/ngenohkevin/taskdeck/internal/server"
	"github.com/ngenohkevin/taskdeck/internal/task"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// First run: generate and persist an API key
	if cfg.SetupMode {
		key, err := config.GenerateAPIKey()
		if err != nil {
			log.Fatalf("Failed to generate API key: %v", err)
		}
		if err := cfg.SaveAPIKey(key); err != nil {
			log.Fatalf("Failed to save API key: %v", err)
		}
		log.Printf("No API key configured - generated one and saved it to %s", cfg.EnvFile)
		log.Printf("API key: %s", key)
	}

	// Create and run server
	srv := server.New(cfg, task.NewRegistry())
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
