// Package schema declares record shapes for flow inputs and outputs and
// checks raw JSON against them.
//
// A Schema is plain data. The same value is used to validate what the UI
// sends, to describe the expected output to the model, and to check what the
// model sends back.
package schema

// Type is the JSON primitive a Schema accepts.
type Type string

const (
	String  Type = "string"
	Number  Type = "number"
	Integer Type = "integer"
	Boolean Type = "boolean"
	Array   Type = "array"
	Object  Type = "object"
)

// Format adds a string-level check on top of Type.
type Format string

const (
	FormatNone     Format = ""
	FormatImageURI Format = "image-data-uri"
	FormatAudioURI Format = "audio-data-uri"
	FormatDate     Format = "date"
)

// Schema describes one value.
type Schema struct {
	Type        Type
	Description string
	Format      Format

	// Object
	Properties []Property

	// Array
	Items    *Schema
	MinItems int
	MaxItems int

	// String
	Enum      []string
	MinLength int

	// Number
	Positive bool
	// Coerce accepts numeric strings such as "2.5" for Number and Integer.
	Coerce bool

	// Message replaces the default text of any failure on this value.
	Message string
}

// Property is a named member of an object schema.
type Property struct {
	Name     string
	Optional bool
	Schema   *Schema
}

func Str(desc string) *Schema { return &Schema{Type: String, Description: desc} }

func Num(desc string) *Schema { return &Schema{Type: Number, Description: desc} }

func Int(desc string) *Schema { return &Schema{Type: Integer, Description: desc} }

func Bool(desc string) *Schema { return &Schema{Type: Boolean, Description: desc} }

// Enum is a string restricted to values. Matching is case-insensitive and
// the declared spelling is kept.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: String, Description: desc, Enum: values}
}

func Arr(desc string, items *Schema) *Schema {
	return &Schema{Type: Array, Description: desc, Items: items}
}

func Obj(desc string, props ...Property) *Schema {
	return &Schema{Type: Object, Description: desc, Properties: props}
}

// Field is a required property.
func Field(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

// Opt is an optional property.
func Opt(name string, s *Schema) Property { return Property{Name: name, Optional: true, Schema: s} }

// MinLen requires at least n characters after trimming.
func (s *Schema) MinLen(n int) *Schema { s.MinLength = n; return s }

func (s *Schema) Pos() *Schema { s.Positive = true; return s }

func (s *Schema) Coerced() *Schema { s.Coerce = true; return s }

func (s *Schema) Msg(m string) *Schema { s.Message = m; return s }

func (s *Schema) As(f Format) *Schema { s.Format = f; return s }

// Len bounds the number of array items. Zero means unbounded.
func (s *Schema) Len(min, max int) *Schema {
	s.MinItems, s.MaxItems = min, max
	return s
}

// Property returns the named property of an object schema.
func (s *Schema) Property(name string) (Property, bool) {
	if s == nil {
		return Property{}, false
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Required lists the required property names in declaration order.
func (s *Schema) Required() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, p := range s.Properties {
		if !p.Optional {
			out = append(out, p.Name)
		}
	}
	return out
}
