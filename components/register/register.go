// components/register/register.go
//
// Registration component - the web UI layer for the registration form.
//
// Context
//   This component owns the browser-facing half of the workflow.  Each
//   browser session gets its own registration.Form and Coordinator (see
//   internal/session).  Pages are server-rendered from the embedded YAML
//   definition; a small script posts every field change back so validation
//   stays eager, and the submit control stays disabled while the form is
//   invalid or a submission is in flight.
//
//------------------------------------------------------------------------------

package register

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/regform/internal/component"
	"github.com/yanizio/regform/internal/countries"
	"github.com/yanizio/regform/internal/form"
	"github.com/yanizio/regform/internal/registration"
	"github.com/yanizio/regform/internal/session"
)

//go:embed forms/registration.yaml
var definitionYAML []byte

//go:embed templates/register.html
var pageHTML string

//go:embed static
var staticFS embed.FS

// compile-time assertions
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// CountrySource is the read side of the country list provider.
type CountrySource interface {
	Start(ctx context.Context)
	Snapshot() ([]string, countries.State, error)
}

// Deps are the collaborators the component needs.
type Deps struct {
	Sessions  *session.Store
	Countries CountrySource
	CSRF      *form.CSRF
}

// Component serves the registration pages and APIs.
type Component struct {
	def       *form.FormDef
	page      *template.Template
	static    fs.FS
	sessions  *session.Store
	countries CountrySource
	csrf      *form.CSRF
}

// New parses the embedded definition and page template.
func New(d Deps) (*Component, error) {
	if d.Sessions == nil || d.Countries == nil || d.CSRF == nil {
		return nil, fmt.Errorf("register: sessions, countries, and csrf are required")
	}

	def, err := form.Parse(definitionYAML)
	if err != nil {
		return nil, err
	}
	if err := form.CheckFields(def, registration.Fields); err != nil {
		return nil, err
	}

	page, err := template.New("register").Parse(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("parse register template: %w", err)
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	return &Component{
		def:       def,
		page:      page,
		static:    static,
		sessions:  d.Sessions,
		countries: d.Countries,
		csrf:      d.CSRF,
	}, nil
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "register" }

// Init starts the one-time country fetch so the list is usually ready by
// the first page view.
func (c *Component) Init(ctx context.Context) error {
	c.countries.Start(ctx)
	return nil
}

// Routes registers page, API, and asset endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get("/", c.handleRoot)
	r.Get("/register", c.handlePage)
	r.Post("/register", c.handleSubmit)
	r.Post("/register/field", c.handleField)
	r.Post("/register/discard", c.handleDiscard)
	r.Get("/api/register", c.handleState)
	r.Get("/api/countries", c.handleCountries)
	r.Handle("/static/*", staticHandler(c.static))
}
