package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"kisanmitra/internal/datauri"
)

// ValidationError reports the first value that failed a check. Message is
// written for the end user; Field is the JSON path of the value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Message
	}
	return "schema: " + e.Field + ": " + e.Message
}

// Validate reports whether raw conforms to s.
func Validate(s *Schema, raw []byte) error {
	_, err := Conform(s, raw)
	return err
}

// Conform validates raw against s and returns it in canonical form: numeric
// strings coerced where allowed, enum values in their declared spelling,
// undeclared members dropped.
func Conform(s *Schema, raw []byte) ([]byte, error) {
	if s == nil {
		return nil, errors.New("schema: nil schema")
	}
	if !gjson.ValidBytes(raw) {
		return nil, &ValidationError{Message: "Invalid input."}
	}
	v, err := conform(s, gjson.ParseBytes(raw), "")
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Decode conforms raw and unmarshals the canonical form into T.
func Decode[T any](s *Schema, raw []byte) (T, error) {
	var out T
	norm, err := Conform(s, raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(norm, &out); err != nil {
		return out, fmt.Errorf("schema: decode: %w", err)
	}
	return out, nil
}

func conform(s *Schema, v gjson.Result, path string) (any, error) {
	switch s.Type {
	case Object:
		if !v.IsObject() {
			return nil, fail(s, path, "must be an object")
		}
		members := v.Map()
		out := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			child, ok := members[p.Name]
			fp := joinPath(path, p.Name)
			if !ok || absent(p.Schema, child) {
				if p.Optional {
					continue
				}
				return nil, fail(p.Schema, fp, "is required")
			}
			cv, err := conform(p.Schema, child, fp)
			if err != nil {
				return nil, err
			}
			out[p.Name] = cv
		}
		return out, nil

	case Array:
		if !v.IsArray() {
			return nil, fail(s, path, "must be a list")
		}
		items := v.Array()
		if s.MinItems > 0 && len(items) < s.MinItems {
			return nil, fail(s, path, fmt.Sprintf("must contain at least %d items", s.MinItems))
		}
		if s.MaxItems > 0 && len(items) > s.MaxItems {
			return nil, fail(s, path, fmt.Sprintf("must contain at most %d items", s.MaxItems))
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			cv, err := conform(s.Items, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out = append(out, cv)
		}
		return out, nil

	case String:
		if v.Type != gjson.String {
			return nil, fail(s, path, "must be text")
		}
		str := v.Str
		if s.MinLength > 0 && utf8.RuneCountInString(strings.TrimSpace(str)) < s.MinLength {
			if s.MinLength == 1 {
				return nil, fail(s, path, "is required")
			}
			return nil, fail(s, path, fmt.Sprintf("must be at least %d characters", s.MinLength))
		}
		if len(s.Enum) > 0 {
			canon, ok := canonicalEnum(s.Enum, str)
			if !ok {
				return nil, fail(s, path, "must be one of: "+strings.Join(s.Enum, ", "))
			}
			str = canon
		}
		if err := checkFormat(s, str, path); err != nil {
			return nil, err
		}
		return str, nil

	case Number, Integer:
		n, ok := number(v, s.Coerce)
		if !ok {
			return nil, fail(s, path, "must be a number")
		}
		// Integer fields decode into int, so stay inside the int32 range.
		if s.Type == Integer && (n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32) {
			return nil, fail(s, path, "must be a whole number")
		}
		if s.Positive && n <= 0 {
			return nil, fail(s, path, "must be a positive number")
		}
		if s.Type == Integer {
			return int64(n), nil
		}
		return n, nil

	case Boolean:
		if !v.IsBool() {
			return nil, fail(s, path, "must be true or false")
		}
		return v.Bool(), nil
	}
	return nil, fmt.Errorf("schema: unsupported type %q at %s", s.Type, path)
}

// absent treats null, and blank strings where a plain string is not
// expected, as missing.
func absent(s *Schema, v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return true
	}
	if v.Type != gjson.String || strings.TrimSpace(v.Str) != "" {
		return false
	}
	return s.Type != String || len(s.Enum) > 0 || s.Format != FormatNone
}

func number(v gjson.Result, coerce bool) (float64, bool) {
	switch {
	case v.Type == gjson.Number:
		return v.Num, true
	case coerce && v.Type == gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func canonicalEnum(values []string, got string) (string, bool) {
	got = strings.TrimSpace(got)
	for _, want := range values {
		if strings.EqualFold(want, got) {
			return want, true
		}
	}
	return "", false
}

func checkFormat(s *Schema, str, path string) error {
	switch s.Format {
	case FormatImageURI, FormatAudioURI:
		kind := "image"
		if s.Format == FormatAudioURI {
			kind = "audio"
		}
		blob, err := datauri.Parse(str)
		if err != nil || blob.Kind() != kind {
			return fail(s, path, "must be a base64 "+kind+" data URI")
		}
	case FormatDate:
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(str)); err != nil {
			return fail(s, path, "must be a date in YYYY-MM-DD format")
		}
	}
	return nil
}

func fail(s *Schema, path, reason string) *ValidationError {
	if s != nil && s.Message != "" {
		return &ValidationError{Field: path, Message: s.Message}
	}
	label := path
	if label == "" {
		label = "value"
	}
	return &ValidationError{Field: path, Message: label + " " + reason + "."}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
