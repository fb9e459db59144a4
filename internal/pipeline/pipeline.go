package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ordertrail/ordertrail/internal/mail"
	"github.com/ordertrail/ordertrail/internal/model"
)

// Oracle is the classification/extraction capability. Both methods degrade
// internally: they report failure through their result types, never through
// a returned error.
type Oracle interface {
	Classify(ctx context.Context, subject, content string) model.ClassificationResult
	Extract(ctx context.Context, subject, content string) model.ExtractionResult
}

// Non-persisting pipeline outcomes. ActionCreated and ActionUpdated are
// defined alongside the reconciler.
const (
	ActionSkipped = "skipped"
	ActionFailed  = "failed"
)

// ErrEmptyEmail marks a request whose payload carried no usable text. It is
// the only pipeline outcome reported as a client error; everything else is a
// success with a descriptive action.
var ErrEmptyEmail = errors.New("missing email content")

// Result is the webhook response summary.
type Result struct {
	Message        string                      `json:"message"`
	Action         string                      `json:"action"`
	Order          *model.Order                `json:"order,omitempty"`
	Classification *model.ClassificationResult `json:"classification,omitempty"`
	Extraction     *model.ExtractionResult     `json:"extraction,omitempty"`
}

// Pipeline runs the linear email-to-order flow for one webhook request.
type Pipeline struct {
	oracle     Oracle
	reconciler *Reconciler
	logger     *slog.Logger
}

// New creates a pipeline over the given oracle and store.
func New(oracle Oracle, store Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		oracle:     oracle,
		reconciler: NewReconciler(store, logger),
		logger:     logger,
	}
}

// Process runs the pipeline on a normalized email. Content-related failures
// (not an order, failed extraction, missing order number) come back as
// successful Results with a descriptive action so the upstream delivery
// system does not retry; only an empty email returns an error.
func (p *Pipeline) Process(ctx context.Context, email model.NormalizedEmail) (Result, error) {
	if email.Empty() {
		return Result{}, ErrEmptyEmail
	}

	classification := p.oracle.Classify(ctx, email.Subject,
		mail.Truncate(email.Content, mail.ClassifyContentLimit))

	if !classification.IsOrderEmail {
		p.logger.Info("email gated out", "reason", classification.Reason, "error", classification.Error)
		return Result{
			Message:        "Email is not order-related",
			Action:         ActionSkipped,
			Classification: &classification,
		}, nil
	}

	extraction := p.oracle.Extract(ctx, email.Subject,
		mail.Truncate(email.Content, mail.ExtractContentLimit))

	facts, err := ValidateExtraction(extraction)
	if err != nil {
		p.logger.Info("extraction rejected", "error", err)
		return Result{
			Message:        "Failed to extract order data",
			Action:         ActionFailed,
			Classification: &classification,
			Extraction:     &extraction,
		}, nil
	}

	action, order, err := p.reconciler.Reconcile(ctx, facts)
	if err != nil {
		return Result{}, err
	}

	message := "Order updated successfully"
	if action == ActionCreated {
		message = "Order created successfully"
	}

	return Result{
		Message:        message,
		Action:         action,
		Order:          order,
		Classification: &classification,
		Extraction:     &extraction,
	}, nil
}
