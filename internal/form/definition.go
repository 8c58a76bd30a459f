// internal/form/definition.go
//
// Regform - Forms subsystem: YAML definition loader.
//
// Context
//   The registration form's presentation (labels, input types, option lists,
//   placeholders) is declared in YAML and embedded by the component that
//   serves it.  Validation rules do NOT live here; they belong to the record
//   schema in internal/registration.  The definition only says how to draw
//   each field, and CheckFields confirms at startup that it draws exactly the
//   fields the record has.
//
// Workflow
//   •  Parse decodes YAML bytes and validates structural rules.
//   •  LoadFormDef reads a file from disk and calls Parse.
//   •  Fields whose options are not static name an OptionsFrom source (for
//      example "countries"); the renderer receives those lists at render time.
//
//------------------------------------------------------------------------------

package form

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID     string     `yaml:"id"`     // Component-scoped identifier.
	Title  string     `yaml:"title"`  // Display heading.
	Action string     `yaml:"action"` // POST target.
	Submit string     `yaml:"submit"` // Submit button label.
	Fields []FieldDef `yaml:"fields"` // Display order.
}

// FieldDef describes a single input control on the form.
type FieldDef struct {
	Name        string   `yaml:"name"`         // Submission key.  Required.
	Label       string   `yaml:"label"`        // Human-readable label.  Required.
	Type        string   `yaml:"type"`         // text, email, tel, select, checkboxes, radio.
	Placeholder string   `yaml:"placeholder"`  // Optional placeholder text.
	Prompt      string   `yaml:"prompt"`       // Empty first option for select.
	Options     []string `yaml:"options"`      // Static options for select/checkboxes/radio.
	OptionsFrom string   `yaml:"options_from"` // Named dynamic source, e.g. "countries".
}

// Option-bearing input types.
var choiceTypes = map[string]bool{"select": true, "checkboxes": true, "radio": true}

var inputTypes = map[string]bool{
	"text": true, "email": true, "tel": true,
	"select": true, "checkboxes": true, "radio": true,
}

// Field returns the definition for name.
func (fd *FormDef) Field(name string) (FieldDef, bool) {
	for _, f := range fd.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// Parse decodes raw YAML and validates its structure.
func Parse(raw []byte) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse form YAML: %w", err)
	}
	if err := validateFormDef(&fd); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadFormDef parses one YAML file from disk.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	fd, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fd, nil
}

// CheckFields returns an error unless fd declares exactly the given field
// names, in any order.
func CheckFields(fd *FormDef, names []string) error {
	for _, n := range names {
		if _, ok := fd.Field(n); !ok {
			return fmt.Errorf("form %s: missing field %q", fd.ID, n)
		}
	}
	for _, f := range fd.Fields {
		if !slices.Contains(names, f.Name) {
			return fmt.Errorf("form %s: unexpected field %q", fd.ID, f.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

// validateFormDef enforces structural rules YAML tags cannot express.
func validateFormDef(fd *FormDef) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition: missing required 'id'")
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form %s: must have 'fields'", fd.ID)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		f := &fd.Fields[i]
		if err := validateField(fd.ID, f); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", fd.ID, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(formID string, f *FieldDef) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", formID)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", formID, f.Name)
	}
	if !inputTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", formID, f.Name, f.Type)
	}
	if choiceTypes[f.Type] && len(f.Options) == 0 && f.OptionsFrom == "" {
		return fmt.Errorf("form %s: field '%s' needs 'options' or 'options_from'", formID, f.Name)
	}
	if !choiceTypes[f.Type] && (len(f.Options) > 0 || f.OptionsFrom != "") {
		return fmt.Errorf("form %s: field '%s' of type %s cannot have options", formID, f.Name, f.Type)
	}
	return nil
}
