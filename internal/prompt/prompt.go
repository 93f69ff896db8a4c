// Package prompt renders flow inputs into model instructions.
//
// A template is a plain function that lists fragments. Each fragment writes a
// piece of text, or nothing when its value is absent, so optional inputs drop
// out without leaving a dangling label. Media fields are attached as separate
// parts and never appear inline.
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"kisanmitra/internal/datauri"
	"kisanmitra/internal/schema"
)

// Rendered is the text and attachments sent to the model for one call.
type Rendered struct {
	Text  string
	Media []datauri.Blob
}

// Builder accumulates fragment output. The first error stops rendering.
type Builder struct {
	buf   strings.Builder
	media []datauri.Blob
	err   error
}

// Fragment writes one piece of a prompt.
type Fragment func(b *Builder)

// Render runs frags in order.
func Render(frags ...Fragment) (Rendered, error) {
	var b Builder
	for _, f := range frags {
		if f == nil {
			continue
		}
		f(&b)
		if b.err != nil {
			return Rendered{}, b.err
		}
	}
	return Rendered{Text: strings.TrimSpace(b.buf.String()) + "\n", Media: b.media}, nil
}

func (b *Builder) line(s string) {
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

// Text writes fixed text followed by a newline.
func Text(s string) Fragment {
	return func(b *Builder) { b.line(s) }
}

func Textf(format string, args ...any) Fragment {
	return func(b *Builder) { b.line(fmt.Sprintf(format, args...)) }
}

// Blank writes an empty line.
func Blank() Fragment {
	return func(b *Builder) { b.buf.WriteByte('\n') }
}

// Line writes "label: value" when value is not blank.
func Line(label, value string) Fragment {
	return func(b *Builder) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.line(label + ": " + strings.TrimSpace(value))
	}
}

// Item is Line rendered as a bullet.
func Item(label, value string) Fragment {
	return func(b *Builder) {
		if strings.TrimSpace(value) == "" {
			return
		}
		b.line("- " + label + ": " + strings.TrimSpace(value))
	}
}

// Steps writes a numbered list.
func Steps(steps ...string) Fragment {
	return func(b *Builder) {
		for i, s := range steps {
			b.line(strconv.Itoa(i+1) + ". " + s)
		}
	}
}

// When includes frags only if cond holds.
func When(cond bool, frags ...Fragment) Fragment {
	return func(b *Builder) {
		if !cond {
			return
		}
		for _, f := range frags {
			if f != nil && b.err == nil {
				f(b)
			}
		}
	}
}

// Section writes "[TITLE]" followed by frags and a blank line. A section whose
// fragments write nothing is omitted entirely.
func Section(title string, frags ...Fragment) Fragment {
	return func(b *Builder) {
		var inner Builder
		inner.media = b.media
		for _, f := range frags {
			if f != nil && inner.err == nil {
				f(&inner)
			}
		}
		b.media = inner.media
		if inner.err != nil {
			b.err = inner.err
			return
		}
		body := strings.TrimSpace(inner.buf.String())
		if body == "" {
			return
		}
		b.line("[" + title + "]")
		b.line(body)
		b.buf.WriteByte('\n')
	}
}

// Media attaches a data URI as a multimodal part and writes a reference to it
// under label. An empty uri writes nothing.
func Media(label, uri string) Fragment {
	return func(b *Builder) {
		if strings.TrimSpace(uri) == "" {
			return
		}
		blob, err := datauri.Parse(uri)
		if err != nil {
			b.err = fmt.Errorf("prompt: %s: %w", label, err)
			return
		}
		b.media = append(b.media, blob)
		b.line(fmt.Sprintf("%s: attached %s #%d", label, blob.Kind(), len(b.media)))
	}
}

// Language closes every prompt with the response language.
func Language(lang string) Fragment {
	return func(b *Builder) {
		if strings.TrimSpace(lang) == "" {
			return
		}
		b.line("Respond in the specified language: " + strings.TrimSpace(lang) + ".")
	}
}

// JSON writes v as indented JSON under label.
func JSON(label string, v any) Fragment {
	return func(b *Builder) {
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			b.err = fmt.Errorf("prompt: encode %s: %w", label, err)
			return
		}
		b.line(label + ":")
		b.line(string(raw))
	}
}

// Output lists the fields of an object schema as an [OUTPUT] section.
func Output(s *schema.Schema) Fragment {
	return func(b *Builder) {
		if s == nil || len(s.Properties) == 0 {
			return
		}
		var buf strings.Builder
		formatFields(&buf, s.Properties, "")
		Section("OUTPUT", Text(strings.TrimRight(buf.String(), "\n")))(b)
	}
}

func formatFields(buf *strings.Builder, props []schema.Property, indent string) {
	for _, p := range props {
		req := "required"
		if p.Optional {
			req = "optional"
		}
		desc := p.Schema.Description
		if len(p.Schema.Enum) > 0 {
			desc = strings.TrimSpace(desc + " One of: " + strings.Join(p.Schema.Enum, ", ") + ".")
		}
		if desc != "" {
			fmt.Fprintf(buf, "%s- %s (%s, %s): %s\n", indent, p.Name, typeName(p.Schema), req, desc)
		} else {
			fmt.Fprintf(buf, "%s- %s (%s, %s)\n", indent, p.Name, typeName(p.Schema), req)
		}
		switch {
		case p.Schema.Type == schema.Object:
			formatFields(buf, p.Schema.Properties, indent+"  ")
		case p.Schema.Type == schema.Array && p.Schema.Items != nil && p.Schema.Items.Type == schema.Object:
			formatFields(buf, p.Schema.Items.Properties, indent+"  ")
		}
	}
}

func typeName(s *schema.Schema) string {
	if s.Type == schema.Array && s.Items != nil {
		return "[]" + typeName(s.Items)
	}
	return string(s.Type)
}

// Num formats a number without trailing zeros.
func Num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// IntPtr formats an optional integer; nil is blank.
func IntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
