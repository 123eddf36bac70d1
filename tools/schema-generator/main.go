package main

import (
	"log"
	"os"

	"github.com/mattsolo1/grove-sweep/pkg/config"
)

func main() {
	data, err := config.Schema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	// Write to the package root
	if err := os.WriteFile("sweep.schema.json", data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated sweep schema at sweep.schema.json")
}
