package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ordertrail/ordertrail/internal/common"
)

// DecodeReply parses an oracle reply that is supposed to be a bare JSON
// object but is observed to sometimes arrive wrapped in markdown fencing or
// surrounding prose. Recovery is layered: direct parse first, then parse
// after stripping a markdown wrapper, then parse the first brace-delimited
// object substring. Irrecoverable replies surface as ErrMalformedReply.
func DecodeReply(content string, v any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("%w: empty reply", common.ErrMalformedReply)
	}

	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	cleaned := cleanMarkdownWrapper(trimmed)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if obj, ok := firstJSONObject(trimmed); ok {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: no parseable JSON object in reply", common.ErrMalformedReply)
}

// cleanMarkdownWrapper strips a ```json ... ``` (or bare ```) fence around
// the reply, if present.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// firstJSONObject scans for the first balanced brace-delimited object in the
// text. Braces inside JSON strings are skipped.
func firstJSONObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1], true
			}
		}
	}

	return "", false
}
