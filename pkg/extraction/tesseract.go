package extraction

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
	"github.com/otiai10/gosseract/v2"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/pkg/extraction/parser"
)

type tesseractExtractor struct {
	languages []string
}

// NewTesseractExtractor builds the local OCR backend. It is the chain's
// terminus: engine errors collapse to a minimal receipt instead of
// propagating.
func NewTesseractExtractor(languages []string) Extractor {
	if len(languages) == 0 {
		languages = []string{"eng", "deu"}
	}
	return &tesseractExtractor{languages: languages}
}

func (e *tesseractExtractor) Name() string {
	return BackendLocalOCR
}

func (e *tesseractExtractor) Extract(_ context.Context, image []byte, _ string) (domain.ParsedReceipt, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		log.Warnf("tesseract language setup failed: %v", err)
		return minimalReceipt(), nil
	}

	if err := client.SetImageFromBytes(image); err != nil {
		log.Warnf("tesseract image load failed: %v", err)
		return minimalReceipt(), nil
	}

	text, err := client.Text()
	if err != nil {
		log.Warnf("tesseract recognition failed: %v", err)
		return minimalReceipt(), nil
	}

	return parser.Parse(text), nil
}
