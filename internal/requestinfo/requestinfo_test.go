package requestinfo

import (
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	googlebot = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestParse_Browser(t *testing.T) {
	info := Parse(net.ParseIP("203.0.113.7"), chromeMac, "en-GB,en;q=0.9", nil)
	assert.Equal(t, "Chrome", info.Browser)
	assert.Equal(t, "124", info.Version)
	assert.Equal(t, "macOS", info.OS)
	assert.Equal(t, "Desktop", info.Device)
	assert.False(t, info.Bot)
	assert.Equal(t, "en-gb", info.Lang)
	assert.Empty(t, info.Country, "no geo db")
}

func TestParse_Bot(t *testing.T) {
	assert.True(t, Parse(nil, googlebot, "", nil).Bot)
}

func TestMiddleware_AttachesInfo(t *testing.T) {
	var got *Info
	h := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/register", nil)
	r.Header.Set("User-Agent", chromeMac)
	r.Header.Set("X-Forwarded-For", "garbage, 198.51.100.4, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, got)
	assert.Equal(t, "198.51.100.4", got.IP.String())
	assert.Contains(t, got.LogFields(), "198.51.100.4")
}

func TestClientIP_Fallbacks(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", clientIP(r).String())

	r.Header.Set("X-Real-Ip", "192.0.2.9")
	assert.Equal(t, "192.0.2.9", clientIP(r).String())
}

func TestFromContext_Missing(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, FromContext(r.Context()))
	assert.Nil(t, FromContext(r.Context()).LogFields())
}

func TestGeoDB_NilAndMissing(t *testing.T) {
	var g *GeoDB
	assert.Empty(t, g.Country(net.ParseIP("8.8.8.8")))
	assert.NoError(t, g.Close())

	_, err := OpenGeo(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}
