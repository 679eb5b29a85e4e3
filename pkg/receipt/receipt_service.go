package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/entities"
	"github.com/davidchanit/receipt-scanner-backend/internal/utils/storage"
	"github.com/davidchanit/receipt-scanner-backend/pkg/extraction"
)

type (
	ReceiptService interface {
		ExtractReceiptDetails(ctx context.Context, req domain.ExtractReceiptRequest) (domain.ReceiptResponse, error)
		GetReceiptByID(ctx context.Context, id string) (domain.ReceiptResponse, error)
		GetReceipts(ctx context.Context) ([]domain.ReceiptResponse, error)
		DeleteReceipt(ctx context.Context, id string) error
		HealthCheck(ctx context.Context) domain.HealthCheckResponse
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		fileStorage       storage.FileStorage
		orchestrator      extraction.Orchestrator
		maxUploadSize     int64
		allowedMimeTypes  []string
	}
)

func NewReceiptService(
	receiptRepository ReceiptRepository,
	fileStorage storage.FileStorage,
	orchestrator extraction.Orchestrator,
	maxUploadSize int64,
	allowedMimeTypes []string,
) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		fileStorage:       fileStorage,
		orchestrator:      orchestrator,
		maxUploadSize:     maxUploadSize,
		allowedMimeTypes:  allowedMimeTypes,
	}
}

// ExtractReceiptDetails validates the upload, saves the image, runs the
// extraction chain and persists the result. Validation happens before any
// side effect; a post-extraction invariant failure deletes the saved image
// (best effort) before the request fails.
func (s *receiptService) ExtractReceiptDetails(ctx context.Context, req domain.ExtractReceiptRequest) (domain.ReceiptResponse, error) {
	file := req.Image

	if file.Size > s.maxUploadSize {
		return domain.ReceiptResponse{}, domain.ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !s.allowedMimeType(contentType) {
		return domain.ReceiptResponse{}, domain.ErrInvalidImageFormat
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !storage.AllowedImageExt(ext) {
		return domain.ReceiptResponse{}, domain.ErrInvalidImageFormat
	}

	opened, err := file.Open()
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		return domain.ReceiptResponse{}, err
	}

	receiptID := uuid.New()
	fileName := fmt.Sprintf("receipt-%s%s", receiptID.String(), ext)
	objectKey, err := s.fileStorage.UploadFile(ctx, fileName, data, contentType, "receipts")
	if err != nil {
		return domain.ReceiptResponse{}, err
	}
	imageURL := s.fileStorage.GetPublicLinkKey(objectKey)

	parsed := s.orchestrator.Extract(ctx, data, contentType)

	if err := validateParsedReceipt(parsed); err != nil {
		if delErr := s.fileStorage.DeleteFile(ctx, objectKey); delErr != nil {
			log.Warnf("compensating image delete failed for %s: %v", objectKey, delErr)
		}
		return domain.ReceiptResponse{}, domain.ErrInvalidExtractionResult
	}

	receipt := buildReceipt(receiptID, parsed, imageURL)
	if err := s.receiptRepository.CreateReceipt(ctx, receipt); err != nil {
		if delErr := s.fileStorage.DeleteFile(ctx, objectKey); delErr != nil {
			log.Warnf("compensating image delete failed for %s: %v", objectKey, delErr)
		}
		return domain.ReceiptResponse{}, err
	}

	return toReceiptResponse(receipt), nil
}

func (s *receiptService) GetReceiptByID(ctx context.Context, id string) (domain.ReceiptResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ReceiptResponse{}, domain.ErrParseUUID
	}

	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		return domain.ReceiptResponse{}, err
	}

	return toReceiptResponse(receipt), nil
}

func (s *receiptService) GetReceipts(ctx context.Context) ([]domain.ReceiptResponse, error) {
	receipts, err := s.receiptRepository.GetReceipts(ctx)
	if err != nil {
		return nil, err
	}

	response := make([]domain.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		response = append(response, toReceiptResponse(receipt))
	}
	return response, nil
}

// DeleteReceipt removes the record and then its stored image. The image
// delete is best effort: a storage failure is logged, not surfaced.
func (s *receiptService) DeleteReceipt(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrParseUUID
	}

	receipt, err := s.receiptRepository.GetReceiptByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrReceiptNotFound
		}
		return err
	}

	if err := s.receiptRepository.DeleteReceipt(ctx, id); err != nil {
		return err
	}

	if receipt.ImageURL != "" {
		objectKey := s.fileStorage.GetObjectKeyFromLink(receipt.ImageURL)
		if objectKey != "" {
			if delErr := s.fileStorage.DeleteFile(ctx, objectKey); delErr != nil {
				log.Warnf("image delete failed for %s: %v", objectKey, delErr)
			}
		}
	}

	return nil
}

func (s *receiptService) HealthCheck(ctx context.Context) domain.HealthCheckResponse {
	database := "up"
	status := "healthy"
	if err := s.receiptRepository.Ping(ctx); err != nil {
		database = "down"
		status = "degraded"
	}

	configured := map[string]bool{}
	for _, name := range s.orchestrator.BackendNames() {
		configured[name] = true
	}

	backends := make([]domain.BackendStatus, 0, 3)
	for _, name := range []string{
		extraction.BackendStructuredVision,
		extraction.BackendOCRVision,
		extraction.BackendLocalOCR,
	} {
		backends = append(backends, domain.BackendStatus{
			Name:      name,
			Available: configured[name],
		})
	}

	return domain.HealthCheckResponse{
		Status:   status,
		Database: database,
		Backends: backends,
	}
}

func (s *receiptService) allowedMimeType(contentType string) bool {
	for _, allowed := range s.allowedMimeTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// validateParsedReceipt enforces the persistence invariants: non-empty
// date/currency/vendor, at least one item, non-negative tax and total.
func validateParsedReceipt(parsed domain.ParsedReceipt) error {
	if parsed.Date == "" || parsed.Currency == "" || parsed.VendorName == "" {
		return domain.ErrInvalidExtractionResult
	}
	if len(parsed.Items) == 0 {
		return domain.ErrInvalidExtractionResult
	}
	if parsed.Tax < 0 || math.IsNaN(parsed.Tax) {
		return domain.ErrInvalidExtractionResult
	}
	if parsed.Total < 0 || math.IsNaN(parsed.Total) {
		return domain.ErrInvalidExtractionResult
	}
	return nil
}

func buildReceipt(id uuid.UUID, parsed domain.ParsedReceipt, imageURL string) *entities.Receipt {
	items := make([]entities.ReceiptItem, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		items = append(items, entities.ReceiptItem{
			ID:        uuid.New(),
			ReceiptID: id,
			Position:  i,
			Name:      item.Name,
			Cost:      item.Cost,
		})
	}

	return &entities.Receipt{
		ID:         id,
		Date:       parsed.Date,
		Currency:   parsed.Currency,
		VendorName: parsed.VendorName,
		Tax:        parsed.Tax,
		Total:      parsed.Total,
		ImageURL:   imageURL,
		Items:      items,
	}
}

func toReceiptResponse(receipt *entities.Receipt) domain.ReceiptResponse {
	items := make([]domain.ReceiptItemResponse, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		items = append(items, domain.ReceiptItemResponse{
			Name: item.Name,
			Cost: item.Cost,
		})
	}

	return domain.ReceiptResponse{
		ID:         receipt.ID.String(),
		Date:       receipt.Date,
		Currency:   receipt.Currency,
		VendorName: receipt.VendorName,
		Items:      items,
		Tax:        receipt.Tax,
		Total:      receipt.Total,
		ImageURL:   receipt.ImageURL,
		CreatedAt:  receipt.CreatedAt,
		UpdatedAt:  receipt.UpdatedAt,
	}
}
