package register

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/regform/internal/countries"
	"github.com/yanizio/regform/internal/form"
	"github.com/yanizio/regform/internal/registration"
	"github.com/yanizio/regform/internal/session"
)

// formState is the JSON shape returned to the eager-validation script.
type formState struct {
	Record   *registration.Record `json:"record,omitempty"`
	Errors   map[string]string    `json:"errors"`
	Valid    bool                 `json:"valid"`
	InFlight bool                 `json:"in_flight"`
}

// pageData feeds templates/register.html.
type pageData struct {
	Title        string
	Form         template.HTML
	Toasts       []registration.Notification
	CountryState countries.State
	CSRFToken    string
}

/*──────────────────────────── Pages ────────────────────────────────────────*/

func (c *Component) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/register", http.StatusFound)
}

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	s := c.sessions.Get(w, r)
	c.render(w, s, http.StatusOK)
}

// handleSubmit applies the whole posted form, re-validates, and submits.
// Both outcomes redirect back to the page, which shows the queued toast.
func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if !c.checkPost(w, r) {
		return
	}
	s := c.sessions.Get(w, r)

	// The coordinator does not deduplicate; the UI layer refuses instead.
	if s.Coordinator.InFlight() {
		http.Error(w, "submission already in progress", http.StatusConflict)
		return
	}

	res, err := s.Form.Load(r.PostForm)
	if err != nil {
		c.formError(w, err)
		return
	}
	if !res.Valid {
		c.render(w, s, http.StatusUnprocessableEntity)
		return
	}

	// Detach from the request: a closed tab must not cancel the call.
	ctx := context.WithoutCancel(r.Context())
	if _, err := s.Coordinator.Submit(ctx, s.Form); errors.Is(err, registration.ErrNotSubmittable) {
		c.render(w, s, http.StatusUnprocessableEntity)
		return
	}
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// handleDiscard drops the session's form, as navigating away would.
func (c *Component) handleDiscard(w http.ResponseWriter, r *http.Request) {
	if !c.checkPost(w, r) {
		return
	}
	c.sessions.End(w, r)
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

/*──────────────────────────── APIs ─────────────────────────────────────────*/

// handleField updates one field and answers with the re-evaluated state.
func (c *Component) handleField(w http.ResponseWriter, r *http.Request) {
	if !c.checkPost(w, r) {
		return
	}
	s := c.sessions.Get(w, r)

	field := r.PostForm.Get("field")
	if _, err := s.Form.Set(field, r.PostForm[field]...); err != nil {
		c.formError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.state(s, false))
}

func (c *Component) handleState(w http.ResponseWriter, r *http.Request) {
	s := c.sessions.Get(w, r)
	writeJSON(w, http.StatusOK, c.state(s, true))
}

func (c *Component) handleCountries(w http.ResponseWriter, _ *http.Request) {
	names, state, err := c.countries.Snapshot()
	if names == nil {
		names = []string{}
	}
	body := map[string]any{"state": state, "countries": names}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// checkPost parses the body and verifies the CSRF token.
func (c *Component) checkPost(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return false
	}
	if !c.csrf.Verify(r.PostForm.Get("csrf_token")) {
		http.Error(w, "Security token invalid.  Please refresh and try again.", http.StatusForbidden)
		return false
	}
	return true
}

func (c *Component) formError(w http.ResponseWriter, err error) {
	var uf *registration.UnknownFieldError
	switch {
	case errors.As(err, &uf):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, registration.ErrDiscarded):
		http.Error(w, "form no longer available, reload the page", http.StatusGone)
	default:
		zap.S().Errorw("register form update failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (c *Component) state(s *session.Session, withRecord bool) formState {
	st := formState{
		Errors:   s.Form.VisibleErrors(),
		Valid:    s.Form.Valid(),
		InFlight: s.Coordinator.InFlight(),
	}
	if withRecord {
		rec := s.Form.Record()
		st.Record = &rec
	}
	return st
}

func (c *Component) render(w http.ResponseWriter, s *session.Session, status int) {
	token, err := c.csrf.Generate()
	if err != nil {
		zap.S().Errorw("csrf token generation failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	names, state, _ := c.countries.Snapshot()
	rec := s.Form.Record()
	values := make(map[string][]string, len(registration.Fields))
	for _, f := range registration.Fields {
		values[f] = rec.Value(f)
	}

	markup, err := form.RenderForm(c.def, form.RenderOptions{
		Values:    values,
		Errors:    s.Form.VisibleErrors(),
		Sources:   map[string][]string{"countries": names},
		CSRFToken: token,
		Disabled:  !s.Form.Valid(),
		InFlight:  s.Coordinator.InFlight(),
	})
	if err != nil {
		zap.S().Errorw("render register form failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	err = c.page.Execute(w, pageData{
		Title:        c.def.Title,
		Form:         markup,
		Toasts:       s.DrainToasts(),
		CountryState: state,
		CSRFToken:    token,
	})
	if err != nil {
		zap.S().Errorw("register page execute failed", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnw("write json failed", "err", err)
	}
}

func staticHandler(fsys fs.FS) http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
}
