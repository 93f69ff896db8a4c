package action

import "time"

// State is a step in the life of one request.
//
//	Received -> Validating -> Rejected
//	                       -> Invoking -> Returned
//	                                   -> ErrorReturned
type State string

const (
	Received      State = "received"
	Validating    State = "validating"
	Rejected      State = "rejected"
	Invoking      State = "invoking"
	Returned      State = "returned"
	ErrorReturned State = "error_returned"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == Rejected || s == Returned || s == ErrorReturned
}

// Record is what the run ledger keeps about one request. Error is internal
// and never shown to callers; Message is what the caller saw on failure.
type Record struct {
	ID         string        `json:"id"`
	Flow       string        `json:"flow"`
	State      State         `json:"state"`
	Trail      []State       `json:"trail"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"durationNs"`
	ModelCalls int64         `json:"modelCalls"`
	Message    string        `json:"message,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func (r *Record) step(s State) {
	r.State = s
	r.Trail = append(r.Trail, s)
}
