package llmtool

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON value in model output")

// ExtractJSON pulls a JSON value out of model text. Markdown code fences and
// prose around a single object or array are stripped.
func ExtractJSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		// drop the language tag on the opening fence
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "```"))
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(s, pair[0])
		end := strings.LastIndex(s, pair[1])
		if start >= 0 && end > start && json.Valid([]byte(s[start:end+1])) {
			return json.RawMessage(s[start : end+1]), nil
		}
	}
	return nil, errNoJSON
}
