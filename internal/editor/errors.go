package editor

import "fmt"

// FailKind classifies save failures surfaced to the UI. None of them are
// retried automatically; Unavailable carries a manual retry affordance.
type FailKind int

const (
	FailUnauthorized FailKind = iota + 1
	FailConflict
	FailNotFound
	FailInvalid
	FailUnavailable
)

func (k FailKind) String() string {
	switch k {
	case FailUnauthorized:
		return "unauthorized"
	case FailConflict:
		return "conflict"
	case FailNotFound:
		return "not_found"
	case FailInvalid:
		return "invalid"
	case FailUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// SaveError is the only error shape that crosses the coordinator boundary;
// raw transport and store errors are normalized into it.
type SaveError struct {
	Kind    FailKind
	Message string
}

func (e *SaveError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("save failed: %s", e.Kind)
	}
	return fmt.Sprintf("save failed: %s: %s", e.Kind, e.Message)
}
