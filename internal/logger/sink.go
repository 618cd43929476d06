package logger

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/wiresphere/internal/engine/gpu"
)

// ErrorSink reports the first fatal renderer error and drops the rest.
// Every renderer failure is unrecoverable, so one diagnostic is enough.
type ErrorSink struct {
	log  *zap.Logger
	once sync.Once
	err  error
}

// NewErrorSink returns a sink writing to l, or to the global logger when l
// is nil.
func NewErrorSink(l *zap.Logger) *ErrorSink {
	if l == nil {
		l = Log
	}
	return &ErrorSink{log: l}
}

// Report logs err once. Nil errors are ignored. It returns true if this call
// was the one that reported.
func (s *ErrorSink) Report(err error) bool {
	if err == nil {
		return false
	}
	reported := false
	s.once.Do(func() {
		s.err = err
		reported = true
		kind := gpu.KindOf(err)
		if kind == 0 {
			s.log.Error("fatal error", zap.Error(err))
			return
		}
		s.log.Error("fatal renderer error",
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
	})
	return reported
}

// Err returns the reported error, if any.
func (s *ErrorSink) Err() error {
	return s.err
}
