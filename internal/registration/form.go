// internal/registration/form.go
//
// Regform - Registration subsystem: the live form a UI layer owns.
//
// Context
//   Form replaces framework-managed two-way binding with an explicit mutable
//   Record plus the Result of validating it.  Every mutation re-runs Validate
//   so the UI can show inline errors and enable or disable submit without
//   waiting for a submit event.
//
//   A Form belongs to exactly one UI instance (a browser session or a CLI
//   process).  The mutex exists because HTTP requests for one session may land
//   on different goroutines, not because the record is shared.
//
//------------------------------------------------------------------------------

package registration

import (
	"errors"
	"sync"
)

// ErrDiscarded is returned by mutations on a form whose owner went away.
var ErrDiscarded = errors.New("registration: form discarded")

// Form is an in-progress registration with eager validation.
type Form struct {
	mu        sync.RWMutex
	rec       Record
	res       Result
	touched   map[string]bool
	discarded bool
}

// NewForm returns a form mounted with the empty record, already evaluated.
func NewForm() *Form {
	f := &Form{rec: Empty(), touched: map[string]bool{}}
	f.res = Validate(f.rec)
	return f
}

// Set replaces one field and re-evaluates the whole record.
func (f *Form) Set(field string, values ...string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.discarded {
		return f.res.clone(), ErrDiscarded
	}
	if err := f.rec.set(field, values); err != nil {
		return f.res.clone(), err
	}
	f.touched[field] = true
	f.res = Validate(f.rec)
	return f.res.clone(), nil
}

// Load replaces every field at once, as a full form post does.  Fields not
// present in values are cleared.
func (f *Form) Load(values map[string][]string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.discarded {
		return f.res.clone(), ErrDiscarded
	}
	next := Empty()
	for _, field := range Fields {
		if err := next.set(field, values[field]); err != nil {
			return f.res.clone(), err
		}
	}
	f.rec = next
	for _, field := range Fields {
		f.touched[field] = true
	}
	f.res = Validate(f.rec)
	return f.res.clone(), nil
}

// Record returns a copy of the current values.
func (f *Form) Record() Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rec.Clone()
}

// Result returns a copy of the latest evaluation.
func (f *Form) Result() Result {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.res.clone()
}

// VisibleErrors returns messages only for fields the user has touched, which
// is what a UI shows inline.  Validity still covers every field.
func (f *Form) VisibleErrors() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.res.Errors))
	for field, msg := range f.res.Errors {
		if f.touched[field] {
			out[field] = msg
		}
	}
	return out
}

// Valid reports the validity flag.
func (f *Form) Valid() bool { return f.Result().Valid }

// Reset clears the form to its mounted state.  It is a no-op once discarded.
func (f *Form) Reset() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.discarded {
		return false
	}
	f.rec = Empty()
	f.touched = map[string]bool{}
	f.res = Validate(f.rec)
	return true
}

// Discard marks the form as gone.  Outstanding submissions must not touch it
// afterwards.
func (f *Form) Discard() {
	f.mu.Lock()
	f.discarded = true
	f.mu.Unlock()
}

// Discarded reports whether Discard was called.
func (f *Form) Discarded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.discarded
}
