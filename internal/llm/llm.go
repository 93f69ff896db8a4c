package llm

import (
	"context"
	"encoding/json"
	"errors"

	"kisanmitra/internal/datauri"
	"kisanmitra/internal/schema"
)

var ErrEmptyResponse = errors.New("llm: model returned no content")

// Model is a generative backend. Implementations must be safe for
// concurrent use.
type Model interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Request is one call to the model.
type Request struct {
	System   string
	Messages []Message
	// Schema asks for JSON output of this shape. Ignored when Tools is set.
	Schema *schema.Schema
	Tools  []ToolSpec
	// Speech asks for audio output instead of text.
	Speech *SpeechConfig
}

type Message struct {
	Role  string
	Parts []Part
}

// Part is exactly one of text, inline media, a tool call or a tool result.
type Part struct {
	Text       string
	Blob       *datauri.Blob
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

type ToolSpec struct {
	Name        string
	Description string
	Parameters  *schema.Schema
}

type ToolCall struct {
	ID   string
	Name string
	Args json.RawMessage
}

type ToolResult struct {
	ID     string
	Name   string
	Output json.RawMessage
	Error  string
}

type SpeechConfig struct {
	Voice string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type Response struct {
	Text  string
	Calls []ToolCall
	Media []datauri.Blob
	Usage Usage
}

func TextPart(s string) Part { return Part{Text: s} }

func BlobPart(b datauri.Blob) Part { return Part{Blob: &b} }

// Size approximates the request payload in bytes for logging.
func (r *Request) Size() int {
	n := len(r.System)
	for _, m := range r.Messages {
		for _, p := range m.Parts {
			n += len(p.Text)
			if p.Blob != nil {
				n += len(p.Blob.Data)
			}
			if p.ToolCall != nil {
				n += len(p.ToolCall.Args)
			}
			if p.ToolResult != nil {
				n += len(p.ToolResult.Output) + len(p.ToolResult.Error)
			}
		}
	}
	return n
}
