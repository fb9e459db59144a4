package pipeline

import (
	"context"
	"sync"

	"github.com/ordertrail/ordertrail/internal/model"
)

// MockOracle is a deterministic Oracle for tests. It returns scripted
// results and records every call, so tests can assert on call counts (for
// example that a gated-out email never reaches extraction).
type MockOracle struct {
	ClassifyResult model.ClassificationResult
	ExtractResult  model.ExtractionResult

	// Optional per-call overrides; when set they take precedence over the
	// fixed results above.
	ClassifyFunc func(subject, content string) model.ClassificationResult
	ExtractFunc  func(subject, content string) model.ExtractionResult

	classifyCalls []string
	extractCalls  []string
	mu            sync.Mutex
}

// NewMockOracle creates a mock oracle with the given fixed results.
func NewMockOracle(classify model.ClassificationResult, extract model.ExtractionResult) *MockOracle {
	return &MockOracle{
		ClassifyResult: classify,
		ExtractResult:  extract,
	}
}

// Classify records the call and returns the scripted verdict.
func (m *MockOracle) Classify(_ context.Context, subject, content string) model.ClassificationResult {
	m.mu.Lock()
	m.classifyCalls = append(m.classifyCalls, subject)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(subject, content)
	}
	return m.ClassifyResult
}

// Extract records the call and returns the scripted facts.
func (m *MockOracle) Extract(_ context.Context, subject, content string) model.ExtractionResult {
	m.mu.Lock()
	m.extractCalls = append(m.extractCalls, subject)
	m.mu.Unlock()

	if m.ExtractFunc != nil {
		return m.ExtractFunc(subject, content)
	}
	return m.ExtractResult
}

// ClassifyCalls returns the number of Classify invocations.
func (m *MockOracle) ClassifyCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.classifyCalls)
}

// ExtractCalls returns the number of Extract invocations.
func (m *MockOracle) ExtractCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.extractCalls)
}
