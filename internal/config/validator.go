// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` right after unmarshalling and secret
// resolution.  Any failure aborts startup, so the binary never runs with a
// malformed endpoint URL or listen address.
//
// Error messages are flattened to "field: rule" pairs so operators see every
// problem at once instead of fixing them one by one.

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns a combined validation error, or nil on success.
func validateStruct(c *Config) error {
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	parts := make([]string, 0, len(fes))
	for _, fe := range fes {
		parts = append(parts, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(parts, "; "))
}
