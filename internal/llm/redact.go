package llm

import "regexp"

var reDataURL = regexp.MustCompile(`(?is)\bdata:(image|video|audio)/[a-z0-9+.;=-]+;base64,[a-z0-9+/=\r\n]+`)

// RedactText replaces inline media payloads with a marker so prompts can be
// logged.
func RedactText(s string) string {
	return reDataURL.ReplaceAllString(s, "[REDACTED media]")
}
