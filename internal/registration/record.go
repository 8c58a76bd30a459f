// internal/registration/record.go
//
// Regform - Registration subsystem: the record a single form instance owns.
//
// Context
//   A Record is the in-progress set of values for one registration attempt.
//   It is created empty when a form mounts, mutated field by field while the
//   user types, reset to empty after a successful submission, and discarded
//   when the form goes away.  Nothing here is persisted.
//
//   Struct tags carry the declarative schema consumed by validate.go.  The
//   json tags are the wire shape of POST /users.
//
//------------------------------------------------------------------------------

package registration

import (
	"slices"
	"strings"
)

// Field names.  These double as the form input names and the JSON keys.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldCountry  = "country"
	FieldHobbies  = "hobbies"
	FieldReligion = "religion"
)

// Fields lists every record field in display order.
var Fields = []string{FieldName, FieldEmail, FieldPhone, FieldCountry, FieldHobbies, FieldReligion}

// Hobbies is the fixed set offered by the form, in display order.
var Hobbies = []string{"Reading", "Music", "Sports", "Coding"}

// Religions is the fixed set offered by the form, in display order.
var Religions = []string{"Christianity", "Islam", "Hinduism", "Other"}

// Record is one registration attempt.
//
// Country is deliberately not checked against the fetched country list; a
// stale or typed value passes as long as it is non-empty.
type Record struct {
	Name     string   `json:"name"     validate:"required"`
	Email    string   `json:"email"    validate:"required,email"`
	Phone    string   `json:"phone"    validate:"required"`
	Country  string   `json:"country"  validate:"required"`
	Hobbies  []string `json:"hobbies"  validate:"min=1,dive,oneof=Reading Music Sports Coding"`
	Religion string   `json:"religion" validate:"required,oneof=Christianity Islam Hinduism Other"`
}

// Empty returns the initial record a form mounts with.
func Empty() Record {
	return Record{Hobbies: []string{}}
}

// IsEmpty reports whether r equals the initial state.
func (r Record) IsEmpty() bool {
	return r.Name == "" && r.Email == "" && r.Phone == "" &&
		r.Country == "" && len(r.Hobbies) == 0 && r.Religion == ""
}

// Clone returns a deep copy so callers cannot alias the hobby slice.
func (r Record) Clone() Record {
	out := r
	out.Hobbies = slices.Clone(r.Hobbies)
	if out.Hobbies == nil {
		out.Hobbies = []string{}
	}
	return out
}

// Value returns the posted representation of field: a single element for
// scalar fields, the selected set for hobbies.  Unknown fields yield nil.
func (r Record) Value(field string) []string {
	switch field {
	case FieldName:
		return single(r.Name)
	case FieldEmail:
		return single(r.Email)
	case FieldPhone:
		return single(r.Phone)
	case FieldCountry:
		return single(r.Country)
	case FieldHobbies:
		return slices.Clone(r.Hobbies)
	case FieldReligion:
		return single(r.Religion)
	}
	return nil
}

// set assigns values to field after trimming.  Scalar fields keep the first
// value; hobbies keep every non-blank value once, in the order given.
func (r *Record) set(field string, values []string) error {
	switch field {
	case FieldName:
		r.Name = first(values)
	case FieldEmail:
		r.Email = first(values)
	case FieldPhone:
		r.Phone = first(values)
	case FieldCountry:
		r.Country = first(values)
	case FieldHobbies:
		r.Hobbies = dedupe(values)
	case FieldReligion:
		r.Religion = first(values)
	default:
		return &UnknownFieldError{Field: field}
	}
	return nil
}

func single(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
