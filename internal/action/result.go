// Package action is the boundary between callers and the flows. Every entry
// point re-validates raw input, runs the flow, and reports either the typed
// output or a message that is safe to show a farmer.
package action

import (
	"encoding/json"
	"errors"
	"strings"
)

// Result is {"success":true,"data":...} or {"success":false,"error":"..."}.
type Result[T any] struct {
	Success bool
	Data    T
	Error   string
}

func OK[T any](v T) Result[T] { return Result[T]{Success: true, Data: v} }

// Fail builds a failed result. A blank message is replaced so the error text
// is never empty.
func Fail[T any](msg string) Result[T] {
	if strings.TrimSpace(msg) == "" {
		msg = genericMessage
	}
	return Result[T]{Error: msg}
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    T    `json:"data"`
		}{true, r.Data})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{false, r.Error})
}

func (r *Result[T]) UnmarshalJSON(b []byte) error {
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*r = Result[T]{Success: env.Success, Error: env.Error}
	if !env.Success {
		if env.Error == "" {
			return errors.New("action: failed result without error")
		}
		return nil
	}
	if len(env.Data) == 0 {
		return errors.New("action: successful result without data")
	}
	return json.Unmarshal(env.Data, &r.Data)
}

// Any erases the data type, for callers that dispatch by flow name.
func (r Result[T]) Any() Result[any] {
	if !r.Success {
		return Result[any]{Error: r.Error}
	}
	return Result[any]{Success: true, Data: r.Data}
}
