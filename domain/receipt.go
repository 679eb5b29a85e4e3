package domain

import (
	"errors"
	"mime/multipart"
	"time"
)

var (
	MessageSuccessExtractReceipt = "receipt extracted successfully"
	MessageSuccessGetReceipt     = "receipt retrieved successfully"
	MessageSuccessGetReceipts    = "receipts retrieved successfully"
	MessageSuccessDeleteReceipt  = "receipt deleted successfully"
	MessageSuccessHealthCheck    = "health check completed"

	MessageFailedExtractReceipt = "failed to extract receipt details"
	MessageFailedGetReceipt     = "failed to retrieve receipt"
	MessageFailedGetReceipts    = "failed to retrieve receipts"
	MessageFailedDeleteReceipt  = "failed to delete receipt"

	ErrReceiptNotFound         = errors.New("receipt not found")
	ErrInvalidImageFormat      = errors.New("invalid image format, only JPEG and PNG are allowed")
	ErrFileTooLarge            = errors.New("uploaded file exceeds the maximum allowed size")
	ErrInvalidExtractionResult = errors.New("extracted receipt failed validation")
)

type (
	// ParsedReceipt is the transient result of the extraction pipeline,
	// before an id, image URL and timestamps are attached.
	ParsedReceipt struct {
		Date       string       `json:"date"`
		Currency   string       `json:"currency"`
		VendorName string       `json:"vendorName"`
		Items      []ParsedItem `json:"items"`
		Tax        float64      `json:"tax"`
		Total      float64      `json:"total"`
	}

	ParsedItem struct {
		Name string  `json:"name"`
		Cost float64 `json:"cost"`
	}

	ExtractReceiptRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	ReceiptItemResponse struct {
		Name string  `json:"name"`
		Cost float64 `json:"cost"`
	}

	ReceiptResponse struct {
		ID         string                `json:"id"`
		Date       string                `json:"date"`
		Currency   string                `json:"currency"`
		VendorName string                `json:"vendor_name"`
		Items      []ReceiptItemResponse `json:"items"`
		Tax        float64               `json:"tax"`
		Total      float64               `json:"total"`
		ImageURL   string                `json:"image_url"`
		CreatedAt  time.Time             `json:"created_at"`
		UpdatedAt  time.Time             `json:"updated_at"`
	}

	BackendStatus struct {
		Name      string `json:"name"`
		Available bool   `json:"available"`
	}

	HealthCheckResponse struct {
		Status   string          `json:"status"` // "healthy" or "degraded"
		Database string          `json:"database"`
		Backends []BackendStatus `json:"extraction_backends"`
	}
)
