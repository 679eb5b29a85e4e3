package extraction

import (
	"context"
	"time"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/pkg/extraction/parser"
)

// Backend names, in chain priority order.
const (
	BackendStructuredVision = "structured-vision"
	BackendOCRVision        = "ocr-vision"
	BackendLocalOCR         = "local-ocr"
)

type (
	// Extractor is one extraction backend. Implementations wrap a remote
	// or local recognition call and produce a transient receipt.
	Extractor interface {
		Name() string
		Extract(ctx context.Context, image []byte, contentType string) (domain.ParsedReceipt, error)
	}
)

// minimalReceipt is the terminal fallback used when even the local OCR
// pass cannot produce anything.
func minimalReceipt() domain.ParsedReceipt {
	return domain.ParsedReceipt{
		VendorName: "Unknown Vendor (OCR failed)",
		Date:       time.Now().Format("1/2/2006"),
		Currency:   "USD",
		Items:      []domain.ParsedItem{{Name: parser.SentinelItem, Cost: 0}},
		Tax:        0,
		Total:      0,
	}
}
