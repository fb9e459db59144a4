package model

// Confidence grades reported by the oracle.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// ClassificationResult is the classifier's verdict on whether an email is
// order-related. On oracle failure the classifier fails closed: IsOrderEmail
// is false, Confidence is Low, and Error carries the cause.
type ClassificationResult struct {
	IsOrderEmail bool     `json:"isOrderEmail"`
	Confidence   string   `json:"confidence"`
	Indicators   []string `json:"indicators,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	Error        string   `json:"error,omitempty"`
}
