package resolve

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/th3gh0s8/aura/pkg/errors"
)

// ErrorList is the non-empty collection of every failure encountered
// across one resolution traversal. Resolve returns it instead of
// short-circuiting on the first branch error, so a caller sees the
// complete set of problems in one pass.
type ErrorList []error

// Error summarizes the collection, one underlying error per line.
func (e ErrorList) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors during dependency resolution:", len(e))
	for _, err := range e {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e ErrorList) Unwrap() []error { return e }

// accumulator gathers branch errors from the parallel fan-out. A branch
// failure never cancels its siblings; every branch runs to completion and
// its error, if any, lands here.
type accumulator struct {
	mu       sync.Mutex
	errs     []error
	poisoned bool
}

func newAccumulator() *accumulator {
	return &accumulator{}
}

func (a *accumulator) add(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errs = append(a.errs, err)
}

// recoverPanic converts a panicking resolution task into the fatal
// state-corruption error. A panic mid-update may have left the shared
// state inconsistent, so it degrades the whole resolution rather than one
// branch. Meant to be deferred at the top of every task goroutine.
func (a *accumulator) recoverPanic() {
	if v := recover(); v != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.poisoned = true
		a.errs = append(a.errs, errors.New(errors.ErrCodeStatePoisoned,
			"a resolution task panicked, discarding all results: %v\n%s", v, debug.Stack()))
	}
}

// result returns nil if no branch failed, otherwise the collected
// ErrorList. When the state was poisoned, only the fatal errors are
// reported; everything else is noise from an already-doomed run.
func (a *accumulator) result() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.errs) == 0 {
		return nil
	}
	if a.poisoned {
		var fatal ErrorList
		for _, err := range a.errs {
			if errors.Is(err, errors.ErrCodeStatePoisoned) {
				fatal = append(fatal, err)
			}
		}
		return fatal
	}
	return ErrorList(a.errs)
}
