package datasource

import (
	"errors"
	"fmt"
)

// ErrorKind tells a retryable I/O failure apart from malformed data.
type ErrorKind int

const (
	// IOFailure: the resource is unreachable, or open/read failed.
	IOFailure ErrorKind = iota + 1
	// ParseFailure: a line has fewer fields than expected, or a field is
	// not a valid floating-point literal.
	ParseFailure
)

func (k ErrorKind) String() string {
	switch k {
	case IOFailure:
		return "io"
	case ParseFailure:
		return "parse"
	default:
		return "unknown"
	}
}

// ErrRetriesExhausted matches a LoadError returned after the whole retry
// budget was spent.
var ErrRetriesExhausted = errors.New("datasource: retry budget exhausted")

// LoadError is the failure of a ShardedCSVReader.Read call.
type LoadError struct {
	Path string
	Kind ErrorKind
	// Line is the 1-based line number of a ParseFailure, 0 otherwise.
	Line int
	// Attempts is the number of attempts made before giving up.
	Attempts  int
	Exhausted bool
	Err       error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("datasource: load %s failed (%s", e.Path, e.Kind)
	if e.Line > 0 {
		msg += fmt.Sprintf(", line %d", e.Line)
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(", %d attempts", e.Attempts)
	}
	return msg + "): " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool {
	return target == ErrRetriesExhausted && e.Exhausted
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not a
// LoadError.
func KindOf(err error) ErrorKind {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Kind
	}
	return 0
}
