// -----------------------------------------------------------------------
// Safe calls - panic-protected wrappers for per-item work
// -----------------------------------------------------------------------

package common

import (
	"fmt"
	"runtime"

	"github.com/ternarybob/arbor"
)

// PanicError is returned by SafeCall when fn panicked.
type PanicError struct {
	Name  string
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Name, e.Value)
}

// SafeCall runs fn and converts a panic into a *PanicError so that one failing
// item cannot take down its siblings.
//
// Example:
//
//	err := common.SafeCall(logger, "fetch PETR4.SA", func() error {
//	    return fetch(ctx, "PETR4.SA")
//	})
func SafeCall(logger arbor.ILogger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			stackTrace := string(buf[:n])

			if logger != nil {
				logger.Error().
					Str("call", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", stackTrace).
					Msg("Recovered from panic")
			}
			err = &PanicError{Name: name, Value: r, Stack: stackTrace}
		}
	}()
	return fn()
}
