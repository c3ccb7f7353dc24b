package validate

import "fmt"

// Kind classifies why a field was rejected.
type Kind int

const (
	EmptyDescription Kind = iota + 1
	WhitespaceError
	FormatError
	InvalidCalendarDate
	DuplicateWord
)

func (k Kind) String() string {
	switch k {
	case EmptyDescription:
		return "EmptyDescription"
	case WhitespaceError:
		return "WhitespaceError"
	case FormatError:
		return "FormatError"
	case InvalidCalendarDate:
		return "InvalidCalendarDate"
	case DuplicateWord:
		return "DuplicateWord"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText lets the kind appear by name in JSON error bodies.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a user-correctable rejection of a single field.
type Error struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newError(field string, kind Kind, msg string) *Error {
	return &Error{Field: field, Kind: kind, Message: msg}
}
