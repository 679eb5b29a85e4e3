package extraction

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/davidchanit/receipt-scanner-backend/domain"
)

type (
	// Orchestrator walks the configured extraction backends in priority
	// order and never fails: the terminal backend guarantees a result.
	Orchestrator interface {
		Extract(ctx context.Context, image []byte, contentType string) domain.ParsedReceipt
		BackendNames() []string
	}

	orchestrator struct {
		extractors []Extractor
	}
)

// NewOrchestrator builds the fallback chain. Callers pass only backends
// whose credentials are configured; the local OCR backend goes last.
func NewOrchestrator(extractors ...Extractor) Orchestrator {
	return &orchestrator{extractors: extractors}
}

// Extract gives each backend exactly one attempt, in order. A backend
// failure is logged and triggers the next candidate; there is no retry
// and no backtracking.
func (o *orchestrator) Extract(ctx context.Context, image []byte, contentType string) domain.ParsedReceipt {
	for _, extractor := range o.extractors {
		result, err := extractor.Extract(ctx, image, contentType)
		if err != nil {
			log.Warnf("extraction backend %s failed, trying next: %v", extractor.Name(), err)
			continue
		}
		return result
	}

	log.Warn("all extraction backends exhausted, returning minimal receipt")
	return minimalReceipt()
}

func (o *orchestrator) BackendNames() []string {
	names := make([]string, 0, len(o.extractors))
	for _, extractor := range o.extractors {
		names = append(names, extractor.Name())
	}
	return names
}
