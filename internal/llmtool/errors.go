package llmtool

import (
	"errors"
	"fmt"
)

var (
	ErrMaxIterations  = errors.New("llmtool: max iterations reached")
	ErrToolNotFound   = errors.New("llmtool: tool not found")
	ErrToolNotAllowed = errors.New("llmtool: tool not allowed")
)

// InvocationError reports that the model could not be reached or did not
// produce an answer: network, quota, empty candidates or a broken tool loop.
type InvocationError struct {
	Flow string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("llmtool: %s: invocation failed: %v", e.Flow, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ParseError reports a model answer that is not JSON or does not conform to
// the flow's output schema. Raw holds the answer as received.
type ParseError struct {
	Flow string
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llmtool: %s: unusable model output: %v", e.Flow, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
