// internal/form/csrf.go
//
// Regform - Forms subsystem: stateless CSRF tokens.
//
// Context
//   Every rendered form embeds a hidden `csrf_token` input, and every POST
//   (full submit or single-field update) must echo it back.  The token is
//   stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce - 16 random bytes.
//   •  unixMicro - issue time, 8 bytes, big-endian.
//   •  HMAC - keyed by the configured secret.
//
//   Verification checks the signature and that the issue time lies within
//   MaxAge.  No server-side state is needed.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	tokenBytes = 16 + 8 + sha256.Size // nonce + ts + sig
	// MaxAge is how long a rendered form stays submittable.
	MaxAge = 2 * time.Hour
	// MinKeyBytes is the shortest accepted secret.
	MinKeyBytes = 32
)

// ErrShortKey is returned for secrets under MinKeyBytes.
var ErrShortKey = errors.New("csrf: key must be at least 32 bytes")

// CSRF issues and verifies tokens under one secret.
type CSRF struct {
	key []byte
	now func() time.Time
}

// NewCSRF builds a CSRF from a base64url (unpadded) key.  An empty key
// generates an ephemeral random one, which invalidates open forms on restart.
func NewCSRF(encodedKey string) (*CSRF, error) {
	if encodedKey == "" {
		key := make([]byte, MinKeyBytes)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
		zap.S().Warnw("security.csrf_key not set, using ephemeral key")
		return &CSRF{key: key, now: time.Now}, nil
	}
	key, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, err
	}
	if len(key) < MinKeyBytes {
		return nil, ErrShortKey
	}
	return &CSRF{key: key, now: time.Now}, nil
}

// Generate creates a new token.  Call once per form render.
func (c *CSRF) Generate() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify returns true if tok passes HMAC and age checks.
func (c *CSRF) Verify(tok string) bool {
	if tok == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce, tsBytes, sig := raw[:16], raw[16:24], raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := c.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		// Expired, or issued in the future beyond clock skew.
		return false
	}

	return hmac.Equal(sig, c.sign(nonce, tsBytes))
}

func (c *CSRF) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
