// internal/registration/validate.go
//
// Regform - Registration subsystem: validation engine.
//
// Context
//   Validate evaluates a Record against the schema declared in record.go
//   struct tags and maps each failing constraint to a static, user-facing
//   message.  Every check is a pure function of the record, so the engine is
//   re-run on every field change rather than only on submit.
//
// Workflow
//   •  go-playground/validator walks the struct and reports FieldErrors.
//   •  Field names come from the json tag, so keys match input names.
//   •  The first failure per field wins; validator already stops at the first
//      failing tag, and dive errors ("hobbies[2]") fold into their parent.
//
//------------------------------------------------------------------------------

package registration

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

// Static messages keyed by "<field>.<tag>".
var messages = map[string]string{
	FieldName + ".required":     "Name is required",
	FieldEmail + ".required":    "Email is required",
	FieldEmail + ".email":       "Enter a valid email",
	FieldPhone + ".required":    "Phone number is required",
	FieldCountry + ".required":  "Country is required",
	FieldHobbies + ".min":       "Select at least one hobby",
	FieldHobbies + ".oneof":     "Select a valid hobby",
	FieldReligion + ".required": "Religion is required",
	FieldReligion + ".oneof":    "Select a valid religion",
}

// Message returns the static message for a failing field/tag pair.
func Message(field, tag string) string {
	if m, ok := messages[field+"."+tag]; ok {
		return m
	}
	return "Invalid value"
}

// -----------------------------------------------------------------------------
// Result types
// -----------------------------------------------------------------------------

// Result is the outcome of one evaluation.  A field absent from Errors is
// valid.
type Result struct {
	Errors map[string]string `json:"errors"`
	Valid  bool              `json:"valid"`
}

// Error returns the message for field or "".
func (r Result) Error(field string) string { return r.Errors[field] }

func (r Result) clone() Result {
	out := Result{Errors: make(map[string]string, len(r.Errors)), Valid: r.Valid}
	for k, m := range r.Errors {
		out.Errors[k] = m
	}
	return out
}

// Err converts an invalid Result into a *ValidationError; nil when valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Fields: r.Errors}
}

// ValidationError carries per-field messages through error returns.
type ValidationError struct{ Fields map[string]string }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "registration invalid: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UnknownFieldError is returned when a caller names a field the record does
// not have.
type UnknownFieldError struct{ Field string }

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("registration: unknown field %q", e.Field)
}

// -----------------------------------------------------------------------------
// Engine
// -----------------------------------------------------------------------------

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Validate evaluates r and returns per-field messages plus the overall flag.
func Validate(r Record) Result {
	res := Result{Errors: map[string]string{}, Valid: true}

	err := v.Struct(r)
	if err == nil {
		return res
	}

	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		// InvalidValidationError means a programming error, not user input.
		zap.S().Errorw("registration validator misuse", "err", err)
		res.Valid = false
		return res
	}

	for _, fe := range fes {
		field := baseField(fe.Field())
		if _, seen := res.Errors[field]; seen {
			continue
		}
		res.Errors[field] = Message(field, fe.Tag())
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// baseField strips a dive index, "hobbies[1]" → "hobbies".
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i != -1 {
		return name[:i]
	}
	return name
}
