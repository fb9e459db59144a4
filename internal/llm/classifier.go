package llm

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/ordertrail/ordertrail/internal/model"
)

// Classifier decides whether a normalized email is order-related. It fails
// closed: any oracle failure yields a not-an-order verdict with the error
// attached, never a propagated error.
type Classifier struct {
	client  Client
	cache   *verdictCache
	limiter *rateLimiter
	logger  *slog.Logger
}

// NewClassifier creates a classifier over the given oracle client.
func NewClassifier(client Client, cfg Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		client:  client,
		cache:   newVerdictCache(cfg.CacheTTL),
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
	}
}

// Classify returns the oracle's verdict for the email.
func (c *Classifier) Classify(ctx context.Context, subject, content string) model.ClassificationResult {
	key := emailHash(subject, content)
	if verdict, found := c.cache.get(key); found {
		c.logger.Debug("classification cache hit", "subject", subject)
		return verdict
	}

	if err := c.limiter.wait(ctx); err != nil {
		return failedClassification(err)
	}

	reply, err := c.client.Complete(ctx, classificationSystemPrompt, emailUserContent(subject, content))
	if err != nil {
		c.logger.Warn("classification oracle call failed", "error", err)
		return failedClassification(err)
	}

	var verdict model.ClassificationResult
	if err := DecodeReply(reply, &verdict); err != nil {
		c.logger.Warn("classification reply not parseable", "error", err)
		return failedClassification(err)
	}

	if verdict.Confidence == "" {
		verdict.Confidence = model.ConfidenceLow
	}

	c.cache.set(key, verdict)

	c.logger.Info("email classified",
		"is_order", verdict.IsOrderEmail,
		"confidence", verdict.Confidence)

	return verdict
}

// Close releases the cache and limiter goroutines.
func (c *Classifier) Close() {
	c.cache.Close()
	c.limiter.Close()
}

// failedClassification is the fail-closed verdict: unclassifiable input is
// treated as not order-related.
func failedClassification(err error) model.ClassificationResult {
	return model.ClassificationResult{
		IsOrderEmail: false,
		Confidence:   model.ConfidenceLow,
		Error:        err.Error(),
	}
}

// emailHash keys the verdict cache on the exact text fed to the oracle.
func emailHash(subject, content string) string {
	sum := sha256.Sum256([]byte(subject + "\x00" + content))
	return fmt.Sprintf("%x", sum)
}
