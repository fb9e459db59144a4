// Package classification provides pattern-based cues over raw email text:
// vendor order-number formats, status keywords, and sender-domain vendor
// detection. The cues are independent of the oracle and are used to backfill
// fields the oracle missed and to sanity-check its output.
package classification

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// PatternKind represents what a pattern identifies in the text.
type PatternKind string

const (
	// KindOrderNumber matches a vendor order or tracking identifier.
	KindOrderNumber PatternKind = "order_number"
	// KindStatus matches order-status vocabulary.
	KindStatus PatternKind = "status"
	// KindVendor matches a vendor name or sender domain.
	KindVendor PatternKind = "vendor"
	// KindSignal matches generic order vocabulary used as indicators.
	KindSignal PatternKind = "signal"
)

// Pattern is one classification pattern. Value carries the normalized result
// for status and vendor patterns; order-number patterns capture theirs from
// the match itself.
type Pattern struct {
	Name     string
	Kind     PatternKind
	Regex    string
	Value    string
	Priority int // Higher priority patterns are checked first
}

// compiledPattern holds a compiled regex pattern with metadata.
type compiledPattern struct {
	compiledRegex *regexp.Regexp
	Pattern
}

// Detector applies the pattern set to email text.
type Detector struct {
	patterns []compiledPattern
	mu       sync.RWMutex
}

// NewDetector creates a detector with the given patterns.
func NewDetector(patterns []Pattern) (*Detector, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return &Detector{patterns: compiled}, nil
}

// NewDefaultDetector creates a detector with the built-in pattern set.
func NewDefaultDetector() *Detector {
	d, err := NewDetector(DefaultPatterns())
	if err != nil {
		// The built-in set is covered by tests; a compile failure here is a
		// programming error.
		panic(err)
	}
	return d
}

func compilePatterns(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, p := range patterns {
		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr // Case-insensitive by default
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, compiledPattern{
			Pattern:       p,
			compiledRegex: regex,
		})
	}

	// Sort by priority (highest first)
	for i := 0; i < len(compiled)-1; i++ {
		for j := i + 1; j < len(compiled); j++ {
			if compiled[j].Priority > compiled[i].Priority {
				compiled[i], compiled[j] = compiled[j], compiled[i]
			}
		}
	}

	return compiled, nil
}

// OrderNumber returns the first order identifier a pattern finds in the
// text, or "" when none match.
func (d *Detector) OrderNumber(text string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.patterns {
		if p.Kind != KindOrderNumber {
			continue
		}
		if m := p.compiledRegex.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// Vendor returns the vendor name detected from the text (sender domain or
// vendor mention), or "" when none match.
func (d *Detector) Vendor(text string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.patterns {
		if p.Kind != KindVendor {
			continue
		}
		if p.compiledRegex.MatchString(text) {
			return p.Value
		}
	}
	return ""
}

// Status returns the normalized order status whose vocabulary appears in the
// text, or "" when none match. Patterns are priority-ordered so that "out
// for delivery" wins over the bare "delivery" vocabulary it contains.
func (d *Detector) Status(text string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.patterns {
		if p.Kind != KindStatus {
			continue
		}
		if p.compiledRegex.MatchString(text) {
			return p.Value
		}
	}
	return ""
}

// Indicators returns the names of all signal patterns present in the text,
// in priority order.
func (d *Detector) Indicators(text string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var indicators []string
	for _, p := range d.patterns {
		if p.Kind != KindSignal {
			continue
		}
		if p.compiledRegex.MatchString(text) {
			indicators = append(indicators, p.Name)
		}
	}
	return indicators
}

// UpdatePatterns replaces the detector's pattern set.
func (d *Detector) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.patterns = compiled
	d.mu.Unlock()

	return nil
}

// PatternCount returns the number of loaded patterns.
func (d *Detector) PatternCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.patterns)
}
