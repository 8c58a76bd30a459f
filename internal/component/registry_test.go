package component

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	name    string
	initErr error
	inited  bool
}

func (s *stub) Name() string { return s.name }

func (s *stub) Init(context.Context) error {
	s.inited = true
	return s.initErr
}

func (s *stub) Routes(r chi.Router) {
	r.Get("/"+s.name, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(s.name))
	})
}

func TestMount_InitsAndRoutes(t *testing.T) {
	a, b := &stub{name: "a"}, &stub{name: "b"}
	r := chi.NewRouter()
	require.NoError(t, Mount(context.Background(), r, a, b))
	assert.True(t, a.inited)
	assert.True(t, b.inited)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/b", nil))
	assert.Equal(t, "b", rec.Body.String())
}

func TestMount_InitErrorStops(t *testing.T) {
	boom := errors.New("boom")
	bad, next := &stub{name: "bad", initErr: boom}, &stub{name: "next"}

	err := Mount(context.Background(), chi.NewRouter(), bad, next)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "init component bad")
	assert.False(t, next.inited)
}
