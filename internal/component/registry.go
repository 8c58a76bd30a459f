// internal/component/registry.go
//
// Component mounting.
//
// Each concrete component lives under components/<name>, is constructed in
// main with its dependencies, and handed to Mount.  Mount runs the optional
// Init hook and lets every component add its routes to the shared router.
// Components register paths directly rather than being chi-mounted at "/",
// since chi allows only one handler mounted per pattern.

package component

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Initializer is optional.  If a Component implements it, Mount calls Init
// once before mounting its routes.  ctx lives as long as the process.
type Initializer interface {
	Init(ctx context.Context) error
}

// Component contract.
//
// Routes() should register BOTH page and API endpoints, e.g:
//
//	r.Get("/register", c.handlePage)
//	r.Get("/api/countries", c.handleCountries)
type Component interface {
	Name() string
	Routes(r chi.Router)
}

// Mount initialises and mounts comps on r in order.  The first Init error
// aborts.
func Mount(ctx context.Context, r chi.Router, comps ...Component) error {
	for _, c := range comps {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(ctx); err != nil {
				return fmt.Errorf("init component %s: %w", c.Name(), err)
			}
		}
		c.Routes(r)
		zap.S().Infow("component mounted", "component", c.Name())
	}
	return nil
}
