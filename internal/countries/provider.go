// internal/countries/provider.go
//
// Country list provider.
//
// Context
// -------
// The registration form offers a country picker fed by a public REST
// endpoint (restcountries.com v3.1).  The list is read-only, fetched once,
// and cached for the life of the process.  Callers that race the first load
// share one request through singleflight.
//
// The form never waits on this list: Snapshot returns whatever is available
// (possibly nothing) together with a State so the UI can show a loading or
// error hint.  A failed fetch is not retried; Reload exists for operators.
//
// Notes
// -----
//   - Order is preserved exactly as the endpoint returns it.
//   - Entries without a common name are skipped.
package countries

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/regform/internal/metrics"
)

// DefaultURL is the public endpoint the form reads.
const DefaultURL = "https://restcountries.com/v3.1/all"

// State describes where the provider is in its single load.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// country mirrors the subset of the restcountries payload we read.
type country struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
}

// Provider fetches and caches the country list.
type Provider struct {
	url  string
	http *http.Client
	sfg  singleflight.Group

	mu    sync.RWMutex
	state State
	names []string
	err   error
}

// New returns an idle Provider.  A nil client uses http.DefaultClient.
func New(url string, hc *http.Client) *Provider {
	if url == "" {
		url = DefaultURL
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Provider{url: url, http: hc, state: StateIdle}
}

// Start kicks off the load in the background and returns immediately.  It
// is safe to call more than once; only one fetch ever runs.
func (p *Provider) Start(ctx context.Context) {
	go func() {
		if _, err := p.Load(ctx); err != nil {
			zap.S().Warnw("country list unavailable", "url", p.url, "err", err)
		}
	}()
}

// Load returns the cached list, fetching it first if needed.  A previous
// failure is returned as-is; use Reload to try again.
func (p *Provider) Load(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	switch p.state {
	case StateReady:
		names := slices.Clone(p.names)
		p.mu.RUnlock()
		return names, nil
	case StateFailed:
		err := p.err
		p.mu.RUnlock()
		return nil, err
	}
	p.mu.RUnlock()
	return p.fetchOnce(ctx)
}

// Reload discards a cached failure or list and fetches again.
func (p *Provider) Reload(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	p.state, p.names, p.err = StateIdle, nil, nil
	p.mu.Unlock()
	return p.fetchOnce(ctx)
}

// Snapshot returns the names loaded so far, the current state, and the
// load error when the state is StateFailed.
func (p *Provider) Snapshot() ([]string, State, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.names), p.state, p.err
}

func (p *Provider) fetchOnce(ctx context.Context) ([]string, error) {
	v, err, _ := p.sfg.Do(p.url, func() (any, error) {
		// Double-check after the singleflight barrier.
		p.mu.Lock()
		if p.state == StateReady {
			names := p.names
			p.mu.Unlock()
			return names, nil
		}
		p.state = StateLoading
		p.mu.Unlock()

		names, err := p.fetch(ctx)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.state, p.err = StateFailed, err
			metrics.CountryFetchTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		p.state, p.names, p.err = StateReady, names, nil
		metrics.CountryFetchTotal.WithLabelValues("ok").Inc()
		metrics.CountriesLoaded.Set(float64(len(names)))
		zap.S().Infow("country list loaded", "count", len(names))
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]string)), nil
}

func (p *Provider) fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build country request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: unexpected status %d", p.url, resp.StatusCode)
	}

	var raw []country
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode country list: %w", err)
	}

	names := make([]string, 0, len(raw))
	for _, c := range raw {
		if c.Name.Common == "" {
			continue
		}
		names = append(names, c.Name.Common)
	}
	return names, nil
}
