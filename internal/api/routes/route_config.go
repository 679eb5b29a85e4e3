package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/davidchanit/receipt-scanner-backend/internal/api/handlers"
	"github.com/davidchanit/receipt-scanner-backend/internal/middleware"
)

type Config struct {
	App            *fiber.App
	ReceiptHandler handlers.ReceiptHandler
	Middleware     middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Receipt()
}

func (c *Config) Receipt() {
	receipt := c.App.Group("/receipt")
	// health route must be registered before the :id wildcard
	{
		receipt.Get("/health/check", c.ReceiptHandler.HealthCheck)
		receipt.Post("/extract-receipt-details", c.ReceiptHandler.ExtractReceiptDetails)
		receipt.Get("", c.ReceiptHandler.GetReceipts)
		receipt.Get("/:id", c.ReceiptHandler.GetReceiptDetails)
		receipt.Delete("/:id", c.ReceiptHandler.DeleteReceipt)
	}
}
