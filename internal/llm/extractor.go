package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/ordertrail/ordertrail/internal/classification"
	"github.com/ordertrail/ordertrail/internal/model"
)

// VendorSource supplies the configured vendor list for the extraction
// prompt. A nil source falls back to the built-in defaults.
type VendorSource func(ctx context.Context) []string

// Extractor pulls structured order facts out of classified order emails.
// Besides the oracle exchange it applies pattern-based cues that do not
// depend on the oracle's reasoning: when the oracle misses an order number,
// vendor, or status that a known pattern can find in the raw text, the
// pattern result fills the gap.
type Extractor struct {
	client   Client
	limiter  *rateLimiter
	detector *classification.Detector
	vendors  VendorSource
	logger   *slog.Logger
	now      func() time.Time
}

// NewExtractor creates an extractor over the given oracle client.
func NewExtractor(client Client, cfg Config, detector *classification.Detector, vendors VendorSource, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		client:   client,
		limiter:  newRateLimiter(cfg.RateLimit),
		detector: detector,
		vendors:  vendors,
		logger:   logger,
		now:      time.Now,
	}
}

// Extract returns the oracle's structured order facts for the email. On any
// oracle failure it degrades to an unsuccessful result with the error
// attached; it never returns an error.
func (e *Extractor) Extract(ctx context.Context, subject, content string) model.ExtractionResult {
	if err := e.limiter.wait(ctx); err != nil {
		return failedExtraction(err)
	}

	var vendorList []string
	if e.vendors != nil {
		vendorList = e.vendors(ctx)
	}

	prompt := buildExtractionPrompt(e.now(), vendorList)
	reply, err := e.client.Complete(ctx, prompt, emailUserContent(subject, content))
	if err != nil {
		e.logger.Warn("extraction oracle call failed", "error", err)
		return failedExtraction(err)
	}

	var result model.ExtractionResult
	if err := DecodeReply(reply, &result); err != nil {
		e.logger.Warn("extraction reply not parseable", "error", err)
		return failedExtraction(err)
	}

	if result.Confidence == "" {
		result.Confidence = model.ConfidenceLow
	}

	e.applyPatternCues(subject, content, &result)

	e.logger.Info("order facts extracted",
		"order_number", result.OrderNumber,
		"vendor", result.Vendor,
		"status", result.OrderStatus,
		"items", len(result.Items),
		"confidence", result.Confidence)

	return result
}

// applyPatternCues backfills fields the oracle left empty from the pattern
// detector. Inputs are often truncated previews; a vendor order-number regex
// frequently finds identifiers the oracle overlooked in them.
func (e *Extractor) applyPatternCues(subject, content string, result *model.ExtractionResult) {
	if e.detector == nil {
		return
	}

	text := subject + "\n" + content

	if result.OrderNumber == "" {
		if number := e.detector.OrderNumber(text); number != "" {
			result.OrderNumber = number
			result.Success = true
			e.logger.Debug("order number recovered by pattern", "order_number", number)
		}
	}
	if result.Vendor == "" {
		result.Vendor = e.detector.Vendor(text)
	}
	if result.OrderStatus == "" {
		result.OrderStatus = e.detector.Status(text)
	}
}

// Close releases the limiter goroutine.
func (e *Extractor) Close() {
	e.limiter.Close()
}

func failedExtraction(err error) model.ExtractionResult {
	return model.ExtractionResult{
		Success:    false,
		Error:      err.Error(),
		Confidence: model.ConfidenceLow,
	}
}
