package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"github.com/davidchanit/receipt-scanner-backend/internal/api/handlers"
	"github.com/davidchanit/receipt-scanner-backend/internal/api/routes"
	"github.com/davidchanit/receipt-scanner-backend/internal/middleware"
	"github.com/davidchanit/receipt-scanner-backend/internal/utils"
	"github.com/davidchanit/receipt-scanner-backend/internal/utils/storage"
	"github.com/davidchanit/receipt-scanner-backend/pkg/extraction"
	"github.com/davidchanit/receipt-scanner-backend/pkg/receipt"
)

const defaultMaxUploadSize = 10 * 1024 * 1024

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	maxUploadSize := maxUploadSizeFromConfig()

	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         int(maxUploadSize) * 2,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	fileStorage, err := newFileStorage(app)
	if err != nil {
		return nil, err
	}
	orchestrator := newOrchestrator()

	// Repository
	receiptRepository := receipt.NewReceiptRepository(db)

	// Service
	receiptService := receipt.NewReceiptService(
		receiptRepository,
		fileStorage,
		orchestrator,
		maxUploadSize,
		allowedMimeTypesFromConfig(),
	)

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		ReceiptHandler: receiptHandler,
		Middleware:     middlewares,
	}
	routesConfig.Setup()
	return app, nil
}

func newFileStorage(app *fiber.App) (storage.FileStorage, error) {
	if utils.GetConfig("STORAGE_BACKEND") == "local" {
		dir := utils.GetConfig("LOCAL_STORAGE_DIR")
		local, err := storage.NewLocalStorage(dir)
		if err != nil {
			return nil, err
		}
		if dir == "" {
			dir = "./uploads"
		}
		app.Static("/uploads", dir)
		return local, nil
	}
	return storage.NewAwsS3(context.Background())
}

// newOrchestrator assembles the extraction chain in priority order. A
// backend with missing credentials is skipped, not attempted; the local
// OCR backend is always present as the terminus.
func newOrchestrator() extraction.Orchestrator {
	ctx := context.Background()
	var extractors []extraction.Extractor

	if apiKey := utils.GetConfig("GEMINI_API_KEY"); apiKey != "" {
		gemini, err := extraction.NewGeminiExtractor(ctx, apiKey, utils.GetConfig("GEMINI_MODEL"))
		if err != nil {
			log.Warnf("skipping structured-vision backend: %v", err)
		} else {
			extractors = append(extractors, gemini)
		}
	}

	projectID := utils.GetConfig("GCP_PROJECT_ID")
	privateKey := utils.GetConfig("GCP_PRIVATE_KEY")
	clientEmail := utils.GetConfig("GCP_CLIENT_EMAIL")
	if projectID != "" && privateKey != "" && clientEmail != "" {
		vision, err := extraction.NewVisionExtractor(ctx, projectID, privateKey, clientEmail)
		if err != nil {
			log.Warnf("skipping ocr-vision backend: %v", err)
		} else {
			extractors = append(extractors, vision)
		}
	}

	extractors = append(extractors, extraction.NewTesseractExtractor(tesseractLanguagesFromConfig()))

	return extraction.NewOrchestrator(extractors...)
}

func maxUploadSizeFromConfig() int64 {
	raw := utils.GetConfig("MAX_UPLOAD_SIZE")
	if raw == "" {
		return defaultMaxUploadSize
	}
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || size <= 0 {
		log.Warnf("invalid MAX_UPLOAD_SIZE %q, using default", raw)
		return defaultMaxUploadSize
	}
	return size
}

func allowedMimeTypesFromConfig() []string {
	raw := utils.GetConfig("ALLOWED_MIME_TYPES")
	if raw == "" {
		return []string{"image/jpeg", "image/jpg", "image/png"}
	}
	var types []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

func tesseractLanguagesFromConfig() []string {
	raw := utils.GetConfig("TESSERACT_LANGUAGES")
	if raw == "" {
		return nil
	}
	var languages []string
	for _, lang := range strings.Split(raw, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			languages = append(languages, lang)
		}
	}
	return languages
}
