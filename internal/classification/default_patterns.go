package classification

import "github.com/ordertrail/ordertrail/internal/model"

// DefaultPatterns returns the built-in pattern set, tuned for the vendors
// commonly seen in UAE e-commerce notification mail.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Order number formats, most specific first.
		{
			Name:     "amazon order number",
			Kind:     KindOrderNumber,
			Regex:    `\b\d{3}-\d{7}-\d{7}\b`,
			Priority: 100,
		},
		{
			Name:     "noon order number",
			Kind:     KindOrderNumber,
			Regex:    `\bNAED\d{8,}\b`,
			Priority: 90,
		},
		{
			Name:     "namshi order number",
			Kind:     KindOrderNumber,
			Regex:    `\bNM-?\d{6,}\b`,
			Priority: 90,
		},
		{
			Name:     "generic order reference",
			Kind:     KindOrderNumber,
			Regex:    `\bORD[-_]?\d{4}[-_]?\d{3,}\b`,
			Priority: 50,
		},

		// Status vocabulary. "out for delivery" must outrank the vocabulary
		// it contains.
		{
			Name:     "out for delivery",
			Kind:     KindStatus,
			Regex:    `out\s+for\s+delivery`,
			Value:    model.StatusOutForDelivery,
			Priority: 100,
		},
		{
			Name:     "delivered",
			Kind:     KindStatus,
			Regex:    `\b(delivered|has\s+arrived|was\s+delivered)\b`,
			Value:    model.StatusDelivered,
			Priority: 90,
		},
		{
			Name:     "shipped",
			Kind:     KindStatus,
			Regex:    `\b(shipped|dispatched|on\s+its\s+way)\b`,
			Value:    model.StatusShipped,
			Priority: 80,
		},
		{
			Name:     "ordered",
			Kind:     KindStatus,
			Regex:    `\b(order\s+(confirmed|placed|received)|thank\s+you\s+for\s+your\s+order)\b`,
			Value:    model.StatusOrdered,
			Priority: 70,
		},

		// Vendor detection from sender domains and brand mentions.
		{
			Name:     "amazon",
			Kind:     KindVendor,
			Regex:    `amazon\.(ae|com|sa)|(^|\W)amazon(\W|$)`,
			Value:    "Amazon",
			Priority: 100,
		},
		{
			Name:     "noon",
			Kind:     KindVendor,
			Regex:    `noon\.com|(^|\W)noon(\W|$)`,
			Value:    "Noon",
			Priority: 90,
		},
		{
			Name:     "namshi",
			Kind:     KindVendor,
			Regex:    `namshi\.com|(^|\W)namshi(\W|$)`,
			Value:    "Namshi",
			Priority: 90,
		},
		{
			Name:     "sharaf dg",
			Kind:     KindVendor,
			Regex:    `sharafdg\.com|sharaf\s+dg`,
			Value:    "Sharaf DG",
			Priority: 90,
		},
		{
			Name:     "carrefour",
			Kind:     KindVendor,
			Regex:    `carrefour(uae)?\.com|(^|\W)carrefour(\W|$)`,
			Value:    "Carrefour",
			Priority: 90,
		},

		// Generic order vocabulary, reported as indicators.
		{
			Name:     "order keyword",
			Kind:     KindSignal,
			Regex:    `\border\b`,
			Priority: 50,
		},
		{
			Name:     "tracking keyword",
			Kind:     KindSignal,
			Regex:    `\btracking\b`,
			Priority: 50,
		},
		{
			Name:     "package keyword",
			Kind:     KindSignal,
			Regex:    `\bpackage\b`,
			Priority: 40,
		},
		{
			Name:     "delivery keyword",
			Kind:     KindSignal,
			Regex:    `\bdeliver(y|ed)\b`,
			Priority: 40,
		},
	}
}
