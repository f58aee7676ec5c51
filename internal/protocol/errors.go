package protocol

import "errors"

// ProtocolKind classifies a ProtocolError.
type ProtocolKind int

const (
	// KindMalformed marks a line that is not valid JSON.
	KindMalformed ProtocolKind = iota
	// KindInvalid marks valid JSON that does not form a command
	// (not an object, missing or mistyped fields).
	KindInvalid
)

// ProtocolError reports an input line that could not be decoded into a Command.
type ProtocolError struct {
	Kind   ProtocolKind
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Kind == KindMalformed {
		return "Invalid JSON: " + e.Detail
	}
	return "Invalid command: " + e.Detail
}

// IsProtocolError reports whether err is a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// ErrSealed is returned by Encoder after the terminal response was written.
var ErrSealed = errors.New("protocol: output sealed after terminal response")

func malformed(err error) error { return &ProtocolError{Kind: KindMalformed, Detail: err.Error()} }

func invalid(detail string) error { return &ProtocolError{Kind: KindInvalid, Detail: detail} }
