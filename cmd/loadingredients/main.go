package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/platemate/backend/config"
	"github.com/platemate/backend/internal/database"
	"github.com/platemate/backend/internal/service"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Loads ingredient catalog entries from a JSON array of
// {"name": ..., "measurement_unit": ...} objects. Existing pairs are left
// untouched.
func main() {
	file := flag.String("file", "ingredients.json", "JSON file with ingredients")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	var records []ingredientRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}

	ingredients := service.NewIngredientService(db)
	ctx := context.Background()

	var created int
	for _, rec := range records {
		if rec.Name == "" || rec.MeasurementUnit == "" {
			log.Printf("Skipping record with missing fields: %+v", rec)
			continue
		}
		_, isNew, err := ingredients.GetOrCreate(ctx, rec.Name, rec.MeasurementUnit)
		if err != nil {
			log.Fatalf("Failed to load ingredient %q: %v", rec.Name, err)
		}
		if isNew {
			created++
		}
	}

	log.Printf("Loaded %d ingredients (%d new)", len(records), created)
}
