package main

import (
	"fmt"
	"log"

	"snapdoc/internal/ai"
	"snapdoc/internal/ai/gemini"
	"snapdoc/internal/ai/openai"
	"snapdoc/internal/ai/openrouter"
	"snapdoc/internal/config"
	"snapdoc/internal/email/noop"
	"snapdoc/internal/email/ses"
	"snapdoc/internal/handler"
	"snapdoc/internal/port"
	"snapdoc/internal/repository/postgres"
	"snapdoc/internal/router"
	"snapdoc/internal/service"
	s3storage "snapdoc/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	fileRepo := postgres.NewDocumentFileRepo(db)
	templateRepo := postgres.NewTemplateRepo(db)
	extractionRepo := postgres.NewExtractionRepo(db)
	errorRepo := postgres.NewProcessingErrorRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize AI providers
	limiter := ai.NewRateLimiter(buildLimits(&cfg.AI))
	registerProviders(cfg.Server.PublicURL)

	primary, err := ai.NewExtractor(&cfg.AI.Primary, limiter)
	if err != nil {
		return fmt.Errorf("failed to initialize primary provider: %w", err)
	}
	var secondary ai.Extractor
	if secondaryCfg := cfg.AI.SecondaryConfig(); secondaryCfg != nil && secondaryCfg.APIKey != "" {
		secondary, err = ai.NewExtractor(secondaryCfg, limiter)
		if err != nil {
			return fmt.Errorf("failed to initialize secondary provider: %w", err)
		}
	}

	retryCfg := ai.DefaultRetryConfig()
	if cfg.AI.MaxRetries > 0 {
		retryCfg.MaxRetries = cfg.AI.MaxRetries
	}

	// Initialize email alerts
	var alerts port.EmailSender
	if cfg.Email.Provider == "ses" {
		alerts, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	} else {
		alerts = noop.NewNoopSender()
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	processorSvc := service.NewProcessorService(
		docRepo, templateRepo, extractionRepo, errorRepo,
		s3Client, &cfg.S3, primary, secondary, retryCfg,
		alerts, cfg.Email.AlertsTo,
	)
	documentSvc := service.NewDocumentService(
		docRepo, fileRepo, templateRepo, extractionRepo, errorRepo,
		s3Client, processorSvc,
	)
	fileSvc := service.NewFileService(docRepo, fileRepo, s3Client, &cfg.S3)
	templateSvc := service.NewTemplateService(templateRepo)
	exportSvc := service.NewExportService(docRepo, templateRepo, extractionRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	documentH := handler.NewDocumentHandler(documentSvc, exportSvc)
	fileH := handler.NewFileHandler(fileSvc)
	templateH := handler.NewTemplateHandler(templateSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, cfg.CORS.AllowedOrigins, authH, documentH, fileH, templateH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// registerProviders installs the provider adapter factories.
func registerProviders(publicURL string) {
	ai.RegisterProvider("gemini", func(cfg *config.ProviderConfig, limiter *ai.RateLimiter) (ai.Extractor, error) {
		return gemini.NewAdapter(cfg, limiter), nil
	})
	ai.RegisterProvider("openai", func(cfg *config.ProviderConfig, limiter *ai.RateLimiter) (ai.Extractor, error) {
		return openai.NewAdapter(cfg, limiter), nil
	})
	ai.RegisterProvider("openrouter", func(cfg *config.ProviderConfig, limiter *ai.RateLimiter) (ai.Extractor, error) {
		return openrouter.NewAdapter(cfg, limiter, publicURL), nil
	})
}

// buildLimits merges configured per-provider request caps over the
// built-in defaults.
func buildLimits(cfg *config.AIConfig) map[string]ai.WindowLimits {
	limits := make(map[string]ai.WindowLimits, len(ai.DefaultProviderLimits))
	for provider, windows := range ai.DefaultProviderLimits {
		limits[provider] = windows
	}
	for _, providerCfg := range []*config.ProviderConfig{&cfg.Primary, &cfg.Secondary} {
		if providerCfg.Provider == "" {
			continue
		}
		windows := limits[providerCfg.Provider]
		if providerCfg.RequestsPerMinute > 0 {
			windows.PerMinute = providerCfg.RequestsPerMinute
		}
		if providerCfg.RequestsPerHour > 0 {
			windows.PerHour = providerCfg.RequestsPerHour
		}
		if providerCfg.RequestsPerDay > 0 {
			windows.PerDay = providerCfg.RequestsPerDay
		}
		limits[providerCfg.Provider] = windows
	}
	return limits
}
