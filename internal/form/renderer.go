// internal/form/renderer.go
//
// Regform - Forms subsystem: HTML renderer.
//
// Context
//   Given a parsed FormDef this file converts the definition plus the live
//   form state into safe, accessible HTML.  The caller passes current values,
//   per-field error messages, any dynamic option lists, and a CSRF token.
//
// Workflow
//   •  RenderForm writes each field via writeField in definition order.
//   •  Every field is followed by a <p class="error"> carrying its message (or
//      nothing) so client-side eager validation can update it in place.
//   •  The submit button is disabled while the form is invalid or a
//      submission is in flight; in flight it reads the pending label.
//   •  The caller receives template.HTML so the page template does not
//      double-escape the markup.
//
// Style
//   Output HTML is plain, no framework classes.  Each input gets
//   id="fld-{name}" and is wrapped in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"slices"
)

// PendingLabel replaces the submit label while a submission is in flight.
const PendingLabel = "Submitting..."

// RenderOptions bundles the live state influencing HTML output.
type RenderOptions struct {
	// Values holds current field values keyed by field name.
	Values map[string][]string
	// Errors holds the current message per invalid field.
	Errors map[string]string
	// Sources supplies option lists for fields with OptionsFrom.
	Sources map[string][]string
	// CSRFToken is embedded as a hidden input when non-empty.
	CSRFToken string
	// Disabled disables the submit control (invalid form).
	Disabled bool
	// InFlight disables the submit control and shows PendingLabel.
	InFlight bool
}

// RenderForm returns the HTML markup for fd.
func RenderForm(fd *FormDef, opts RenderOptions) (template.HTML, error) {
	var buf bytes.Buffer

	buf.WriteString(`<form class="regform" id="form-` + html.EscapeString(fd.ID) +
		`" method="post" action="` + html.EscapeString(fd.Action) + `" novalidate>` + "\n")
	if fd.Title != "" {
		buf.WriteString(`<h2>` + html.EscapeString(fd.Title) + `</h2>` + "\n")
	}

	for _, f := range fd.Fields {
		if err := writeField(&buf, &f, opts); err != nil {
			return "", err
		}
	}

	if opts.CSRFToken != "" {
		buf.WriteString(fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`+"\n",
			html.EscapeString(opts.CSRFToken)))
	}

	label := fd.Submit
	if label == "" {
		label = "Submit"
	}
	if opts.InFlight {
		label = PendingLabel
	}
	buf.WriteString(`<button type="submit" id="fld-submit"`)
	if opts.Disabled || opts.InFlight {
		buf.WriteString(` disabled`)
	}
	buf.WriteString(`>` + html.EscapeString(label) + `</button>` + "\n")

	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for an individual field into buf.
func writeField(buf *bytes.Buffer, f *FieldDef, opts RenderOptions) error {
	vals := opts.Values[f.Name]
	val := ""
	if len(vals) > 0 {
		val = vals[0]
	}
	name := html.EscapeString(f.Name)
	idAttr := `id="fld-` + name + `"`
	nameAttr := `name="` + name + `"`

	buf.WriteString(`<div class="form-field" data-field="` + name + `">` + "\n")

	switch f.Type {
	case "text", "email", "tel":
		buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="` + f.Type + `"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "select":
		buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr + `>` + "\n")
		buf.WriteString(`<option value="">` + html.EscapeString(f.Prompt) + `</option>` + "\n")
		for _, opt := range optionsFor(f, opts) {
			sel := ""
			if val == opt {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt) + `"` + sel + `>` +
				html.EscapeString(opt) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case "checkboxes", "radio":
		kind := "checkbox"
		if f.Type == "radio" {
			kind = "radio"
		}
		buf.WriteString(`<fieldset ` + idAttr + `>` + "\n")
		buf.WriteString(`<legend>` + html.EscapeString(f.Label) + `</legend>` + "\n")
		for i, opt := range optionsFor(f, opts) {
			optID := fmt.Sprintf("fld-%s-%d", name, i)
			checked := ""
			if slices.Contains(vals, opt) {
				checked = ` checked`
			}
			buf.WriteString(`<label for="` + optID + `"><input id="` + optID + `" ` + nameAttr +
				` type="` + kind + `" value="` + html.EscapeString(opt) + `"` + checked + `> ` +
				html.EscapeString(opt) + `</label>` + "\n")
		}
		buf.WriteString(`</fieldset>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	// Error slot, populated here and updated client-side on change.
	buf.WriteString(`<p class="error" id="err-` + name + `" aria-live="polite">` +
		html.EscapeString(opts.Errors[f.Name]) + `</p>` + "\n")

	buf.WriteString(`</div>` + "\n")
	return nil
}

// optionsFor returns static options or the named dynamic source.
func optionsFor(f *FieldDef, opts RenderOptions) []string {
	if f.OptionsFrom != "" {
		return opts.Sources[f.OptionsFrom]
	}
	return f.Options
}
