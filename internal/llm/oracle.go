package llm

import (
	"log/slog"

	"github.com/ordertrail/ordertrail/internal/classification"
)

// Oracle bundles the classifier and extractor over one shared client so the
// pipeline sees a single capability.
type Oracle struct {
	*Classifier
	*Extractor
}

// NewOracle creates the classifier/extractor pair from one configuration.
func NewOracle(cfg Config, detector *classification.Detector, vendors VendorSource, logger *slog.Logger) (*Oracle, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Oracle{
		Classifier: NewClassifier(client, cfg, logger),
		Extractor:  NewExtractor(client, cfg, detector, vendors, logger),
	}, nil
}

// Close releases both components' background goroutines.
func (o *Oracle) Close() {
	o.Classifier.Close()
	o.Extractor.Close()
}
