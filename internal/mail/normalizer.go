// Package mail normalizes the heterogeneous webhook payloads delivered by
// upstream email forwarders into a canonical NormalizedEmail. Several
// forwarder products are in the wild and each posts a different JSON shape;
// the normalizer tries a small ordered set of shape matchers and takes the
// first that applies.
package mail

import (
	"encoding/json"

	"github.com/ordertrail/ordertrail/internal/model"
)

// Content caps applied before text is fed to the oracle. Bodies are often
// full HTML emails; the oracle only needs a prefix to classify or extract,
// and capping bounds request cost and latency.
const (
	ClassifyContentLimit = 2000
	ExtractContentLimit  = 3000
)

// matcher attempts to normalize one known payload shape. It returns false
// when the shape's discriminant keys are not present.
type matcher func(body map[string]any) (model.NormalizedEmail, bool)

var matchers = []matcher{matchCapitalized, matchLowercase, matchNestedPayload}

// Normalize converts a raw webhook body into a NormalizedEmail. An
// unparseable body or an unrecognized shape yields the zero value; the
// caller is responsible for rejecting empty results.
func Normalize(raw []byte) model.NormalizedEmail {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return model.NormalizedEmail{}
	}
	for _, match := range matchers {
		if email, ok := match(body); ok {
			return email
		}
	}
	return model.NormalizedEmail{}
}

// matchCapitalized handles flat payloads with capitalized header keys and a
// top-level snippet: {"Subject": ..., "From": ..., "snippet": ...}.
func matchCapitalized(body map[string]any) (model.NormalizedEmail, bool) {
	subject, ok := stringField(body, "Subject")
	if !ok {
		return model.NormalizedEmail{}, false
	}
	sender, _ := stringField(body, "From")
	content, _ := stringField(body, "Body")
	if content == "" {
		content, _ = stringField(body, "snippet")
	}
	return model.NormalizedEmail{Subject: subject, Content: content, Sender: sender}, true
}

// matchLowercase handles flat payloads with lowercase keys:
// {"subject": ..., "from"/"from_email": ..., "body"/"snippet": ...}.
func matchLowercase(body map[string]any) (model.NormalizedEmail, bool) {
	subject, ok := stringField(body, "subject")
	if !ok {
		return model.NormalizedEmail{}, false
	}
	sender, _ := stringField(body, "from")
	if sender == "" {
		sender, _ = stringField(body, "from_email")
	}
	content, _ := stringField(body, "body")
	if content == "" {
		content, _ = stringField(body, "snippet")
	}
	return model.NormalizedEmail{Subject: subject, Content: content, Sender: sender}, true
}

// matchNestedPayload handles Gmail-API style payloads where the headers live
// in a nested payload object and the snippet is supplied alongside:
// {"snippet": ..., "payload": {"headers": [{"name": "Subject", "value": ...}]}}.
func matchNestedPayload(body map[string]any) (model.NormalizedEmail, bool) {
	payload, ok := body["payload"].(map[string]any)
	if !ok {
		return model.NormalizedEmail{}, false
	}

	var subject, sender string
	if headers, ok := payload["headers"].([]any); ok {
		for _, h := range headers {
			header, ok := h.(map[string]any)
			if !ok {
				continue
			}
			name, _ := stringField(header, "name")
			value, _ := stringField(header, "value")
			switch name {
			case "Subject":
				subject = value
			case "From":
				sender = value
			}
		}
	}

	content, _ := stringField(body, "snippet")
	return model.NormalizedEmail{Subject: subject, Content: content, Sender: sender}, true
}

// Truncate caps s to at most limit bytes. Oracle inputs are plain prefixes;
// a clipped multi-byte rune at the cut point is acceptable.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
