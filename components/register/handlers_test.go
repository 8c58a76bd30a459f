// components/register/handlers_test.go
//
// End-to-end tests for the registration pages.
//
// Context
// -------
// A real chi router, session store, and CSRF signer sit in front of a fake
// users API.  The browser is an http.Client with a cookie jar that does not
// follow redirects, so each test can assert the PRG 303 and then GET the
// page the way a browser would.
//
//   • fakeAPI  - records calls; optional gate holds a submission open.
//   • fixedCountries - CountrySource with a canned snapshot.

package register

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/regform/internal/countries"
	"github.com/yanizio/regform/internal/form"
	"github.com/yanizio/regform/internal/registration"
	"github.com/yanizio/regform/internal/session"
)

type fakeAPI struct {
	mu      sync.Mutex
	calls   []registration.Record
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (a *fakeAPI) Submit(_ context.Context, rec registration.Record) error {
	a.mu.Lock()
	a.calls = append(a.calls, rec)
	a.mu.Unlock()
	if a.entered != nil {
		a.entered <- struct{}{}
	}
	if a.gate != nil {
		<-a.gate
	}
	return a.err
}

func (a *fakeAPI) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

type fixedCountries struct {
	names []string
	state countries.State
	err   error
}

func (f *fixedCountries) Start(context.Context) {}

func (f *fixedCountries) Snapshot() ([]string, countries.State, error) {
	return f.names, f.state, f.err
}

type browser struct {
	t   *testing.T
	srv *httptest.Server
	hc  *http.Client
}

func newBrowser(t *testing.T, api registration.Submitter, src CountrySource) *browser {
	t.Helper()
	key := base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", form.MinKeyBytes)))
	csrf, err := form.NewCSRF(key)
	require.NoError(t, err)

	comp, err := New(Deps{
		Sessions:  session.NewStore(api, 16, ""),
		Countries: src,
		CSRF:      csrf,
	})
	require.NoError(t, err)
	require.NoError(t, comp.Init(context.Background()))

	r := chi.NewRouter()
	comp.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &browser{t: t, srv: srv, hc: hc}
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.hc.Get(b.srv.URL + path)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (b *browser) post(path string, vals url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.hc.PostForm(b.srv.URL+path, vals)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

var tokenRE = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// token loads the page and returns the CSRF token it carries.
func (b *browser) token() string {
	b.t.Helper()
	_, body := b.get("/register")
	m := tokenRE.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "page has no csrf token")
	return m[1]
}

func adaValues(tok string) url.Values {
	return url.Values{
		"csrf_token": {tok},
		"name":       {"Ada Lovelace"},
		"email":      {"ada@example.com"},
		"phone":      {"2348011111111"},
		"country":    {"Nigeria"},
		"hobbies":    {"Coding"},
		"religion":   {"Other"},
	}
}

func ready() *fixedCountries {
	return &fixedCountries{names: []string{"Ghana", "Nigeria"}, state: countries.StateReady}
}

func TestPage_InitialRender(t *testing.T) {
	b := newBrowser(t, &fakeAPI{}, ready())

	status, body := b.get("/register")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<title>User Registration</title>`)
	assert.Contains(t, body, `<option value="Nigeria">Nigeria</option>`)
	assert.Contains(t, body, `<button type="submit" id="fld-submit" disabled>Submit</button>`)
	assert.NotContains(t, body, "is required", "untouched fields show no errors")
	assert.NotContains(t, body, `class="toast`)
}

func TestPage_CountryHints(t *testing.T) {
	b := newBrowser(t, &fakeAPI{}, &fixedCountries{state: countries.StateLoading})
	_, body := b.get("/register")
	assert.Contains(t, body, "Loading countries")

	b = newBrowser(t, &fakeAPI{}, &fixedCountries{state: countries.StateFailed, err: errors.New("dns")})
	_, body = b.get("/register")
	assert.Contains(t, body, "Country list unavailable.")
	assert.Contains(t, body, `<select id="fld-country" name="country">`, "form stays usable")
}

func TestField_EagerValidation(t *testing.T) {
	b := newBrowser(t, &fakeAPI{}, ready())
	tok := b.token()

	resp, body := b.post("/register/field", url.Values{
		"csrf_token": {tok}, "field": {"email"}, "email": {"not-an-email"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var st struct {
		Errors   map[string]string `json:"errors"`
		Valid    bool              `json:"valid"`
		InFlight bool              `json:"in_flight"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	assert.Equal(t, map[string]string{"email": "Enter a valid email"}, st.Errors)
	assert.False(t, st.Valid)
	assert.False(t, st.InFlight)

	_, page := b.get("/register")
	assert.Contains(t, page, `value="not-an-email"`)
	assert.Contains(t, page, `<p class="error" id="err-email" aria-live="polite">Enter a valid email</p>`)
	assert.Contains(t, page, `id="fld-submit" disabled`)
}

func TestField_UnknownField(t *testing.T) {
	b := newBrowser(t, &fakeAPI{}, ready())
	resp, _ := b.post("/register/field", url.Values{"csrf_token": {b.token()}, "field": {"age"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPost_RequiresCSRF(t *testing.T) {
	api := &fakeAPI{}
	b := newBrowser(t, api, ready())

	vals := adaValues("forged")
	for _, path := range []string{"/register", "/register/field", "/register/discard"} {
		resp, _ := b.post(path, vals)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
	assert.Zero(t, api.count())
}

func TestSubmit_SuccessResetsAndToasts(t *testing.T) {
	api := &fakeAPI{}
	b := newBrowser(t, api, ready())

	resp, _ := b.post("/register", adaValues(b.token()))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/register", resp.Header.Get("Location"))
	require.Equal(t, 1, api.count())
	assert.Equal(t, "Ada Lovelace", api.calls[0].Name)
	assert.Equal(t, []string{"Coding"}, api.calls[0].Hobbies)

	_, page := b.get("/register")
	assert.Equal(t, 1, strings.Count(page, `<div class="toast toast-success" role="status">Form submitted successfully!</div>`))
	assert.NotContains(t, page, `value="Ada Lovelace"`)
	assert.Contains(t, page, `id="fld-submit" disabled`)

	_, again := b.get("/register")
	assert.NotContains(t, again, "Form submitted successfully!", "toasts show once")
}

func TestSubmit_FailureKeepsValues(t *testing.T) {
	api := &fakeAPI{err: errors.New("connection refused")}
	b := newBrowser(t, api, ready())

	resp, _ := b.post("/register", adaValues(b.token()))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, page := b.get("/register")
	assert.Equal(t, 1, strings.Count(page, "Submission failed!"))
	assert.Contains(t, page, `toast-error`)
	assert.Contains(t, page, `value="Ada Lovelace"`)
	assert.Contains(t, page, `<option value="Nigeria" selected>Nigeria</option>`)
	assert.Contains(t, page, `<button type="submit" id="fld-submit">Submit</button>`)
}

func TestSubmit_InvalidRerenders(t *testing.T) {
	api := &fakeAPI{}
	b := newBrowser(t, api, ready())

	vals := adaValues(b.token())
	vals.Set("email", "not-an-email")
	vals.Del("hobbies")
	resp, body := b.post("/register", vals)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid email")
	assert.Contains(t, body, "Select at least one hobby")
	assert.Contains(t, body, `id="fld-submit" disabled`)
	assert.Zero(t, api.count())
}

func TestSubmit_InFlight(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	b := newBrowser(t, api, ready())
	tok := b.token()

	done := make(chan int, 1)
	go func() {
		resp, err := b.hc.PostForm(b.srv.URL+"/register", adaValues(tok))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	select {
	case <-api.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("submission never reached the api")
	}

	_, page := b.get("/register")
	assert.Contains(t, page, `<button type="submit" id="fld-submit" disabled>Submitting...</button>`)

	_, raw := b.get("/api/register")
	var st struct {
		InFlight bool                `json:"in_flight"`
		Record   registration.Record `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &st))
	assert.True(t, st.InFlight)
	assert.Equal(t, "Ada Lovelace", st.Record.Name)

	resp, _ := b.post("/register", adaValues(tok))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(api.gate)
	assert.Equal(t, http.StatusSeeOther, <-done)
	assert.Equal(t, 1, api.count())
}

func TestDiscard_DropsOutstandingOutcome(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	b := newBrowser(t, api, ready())
	tok := b.token()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if resp, err := b.hc.PostForm(b.srv.URL+"/register", adaValues(tok)); err == nil {
			resp.Body.Close()
		}
	}()
	<-api.entered

	resp, _ := b.post("/register/discard", url.Values{"csrf_token": {tok}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	close(api.gate)
	<-done

	_, page := b.get("/register")
	assert.NotContains(t, page, "Form submitted successfully!")
	assert.NotContains(t, page, `value="Ada Lovelace"`)
}

func TestCountriesAPI(t *testing.T) {
	b := newBrowser(t, &fakeAPI{}, ready())
	_, raw := b.get("/api/countries")
	var got struct {
		State     string   `json:"state"`
		Countries []string `json:"countries"`
		Error     string   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "ready", got.State)
	assert.Equal(t, []string{"Ghana", "Nigeria"}, got.Countries)

	b = newBrowser(t, &fakeAPI{}, &fixedCountries{state: countries.StateFailed, err: errors.New("timeout")})
	_, raw = b.get("/api/countries")
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "failed", got.State)
	assert.Empty(t, got.Countries)
	assert.Equal(t, "timeout", got.Error)
}

func TestRootAndStatic(t *testing.T) {
	b := newBrowser(t, &fakeAPI{}, ready())

	resp, err := b.hc.Get(b.srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/register", resp.Header.Get("Location"))

	status, js := b.get("/static/register.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, js, "/register/field")
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}
