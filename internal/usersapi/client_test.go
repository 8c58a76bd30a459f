package usersapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/regform/internal/registration"
)

func sample() registration.Record {
	return registration.Record{
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
		Phone:    "2348011111111",
		Country:  "Nigeria",
		Hobbies:  []string{"Coding"},
		Religion: "Other",
	}
}

func TestSubmit_PostsJSON(t *testing.T) {
	var (
		gotPath, gotCT, gotAuth string
		gotBody                 map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", Options{Token: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/users", c.Endpoint())

	require.NoError(t, c.Submit(context.Background(), sample()))
	assert.Equal(t, "/users", gotPath)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "Bearer s3cret", gotAuth)
	assert.Equal(t, map[string]any{
		"name":     "Ada Lovelace",
		"email":    "ada@example.com",
		"phone":    "2348011111111",
		"country":  "Nigeria",
		"hobbies":  []any{"Coding"},
		"religion": "Other",
	}, gotBody)
}

func TestSubmit_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)
	assert.NoError(t, c.Submit(context.Background(), sample()))
}

func TestSubmit_Non2xxIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	err = c.Submit(context.Background(), sample())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Contains(t, se.Body, "db down")
}

func TestSubmit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, Options{})
	require.NoError(t, err)
	err = c.Submit(context.Background(), sample())
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestNew_RejectsBadScheme(t *testing.T) {
	_, err := New("ftp://example.com", Options{})
	assert.Error(t, err)
	_, err = New("://nope", Options{})
	assert.Error(t, err)
}
