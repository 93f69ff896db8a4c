package llm

import (
	genai "google.golang.org/genai"

	"kisanmitra/internal/schema"
)

// toGenaiSchema maps a flow schema onto the subset of OpenAPI the Gemini API
// accepts. Checks Gemini cannot express (formats, positivity) are left to
// conformance after the call.
func toGenaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case schema.String:
		out.Type = genai.TypeString
		if len(s.Enum) > 0 {
			out.Format = "enum"
			out.Enum = append([]string(nil), s.Enum...)
		}
		if s.Format == schema.FormatDate {
			out.Pattern = `^\d{4}-\d{2}-\d{2}$`
		}
	case schema.Number:
		out.Type = genai.TypeNumber
	case schema.Integer:
		out.Type = genai.TypeInteger
	case schema.Boolean:
		out.Type = genai.TypeBoolean
	case schema.Array:
		out.Type = genai.TypeArray
		out.Items = toGenaiSchema(s.Items)
		if s.MinItems > 0 {
			out.MinItems = genai.Ptr(int64(s.MinItems))
		}
		if s.MaxItems > 0 {
			out.MaxItems = genai.Ptr(int64(s.MaxItems))
		}
	case schema.Object:
		out.Type = genai.TypeObject
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = toGenaiSchema(p.Schema)
			out.PropertyOrdering = append(out.PropertyOrdering, p.Name)
			if !p.Optional {
				out.Required = append(out.Required, p.Name)
			}
		}
	}
	return out
}
