package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"tallybridge/internal/config"
	"tallybridge/internal/handler"
	"tallybridge/internal/router"
	"tallybridge/internal/service"
	"tallybridge/internal/validator"
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

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	v := validator.New(cfg.Limits.LargeBatchWarn)

	// Initialize services
	conversionSvc := service.NewConversionService(v, cfg.Limits.BatchConcurrency)
	bankSvc := service.NewBankService(v)

	// Initialize handlers
	convertH := handler.NewConvertHandler(conversionSvc, cfg.Limits.MaxUploadMB)
	bankH := handler.NewBankHandler(bankSvc, cfg.Limits.MaxUploadMB)
	exportH := handler.NewExportHandler(cfg.Limits.MaxUploadMB)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(cfg, convertH, bankH, exportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
