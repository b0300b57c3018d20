package main

import (
	"context"
	"log"

	"snapdoc/internal/config"
	"snapdoc/internal/repository/postgres"
	"snapdoc/internal/service"
)

// Seeds the built-in guest form templates into an empty form_templates
// table. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	templateSvc := service.NewTemplateService(postgres.NewTemplateRepo(db))

	created, err := templateSvc.SeedDefaults(context.Background())
	if err != nil {
		log.Fatalf("seeding templates failed: %v", err)
	}
	log.Printf("seeded %d templates", created)
}
