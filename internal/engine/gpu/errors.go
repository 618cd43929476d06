package gpu

import (
	"errors"
	"fmt"
)

// Kind classifies renderer failures. None of them is retryable.
type Kind int

const (
	// KindConfig covers invalid tessellation, layout mismatches and bad
	// settings. Raised before any GPU allocation.
	KindConfig Kind = iota + 1
	// KindResource covers device, surface, shader, pipeline and buffer
	// creation. Fatal at startup.
	KindResource
	// KindSubmit covers buffer writes, pass recording, submission and
	// presentation during the frame loop. Fatal to the loop.
	KindSubmit
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindResource:
		return "resource"
	case KindSubmit:
		return "submit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a classified renderer error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config wraps err as a configuration error.
func Config(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

// Resource wraps err as a resource error.
func Resource(op string, err error) error {
	return &Error{Kind: KindResource, Op: op, Err: err}
}

// Submit wraps err as a submission error.
func Submit(op string, err error) error {
	return &Error{Kind: KindSubmit, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or 0 when err is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
