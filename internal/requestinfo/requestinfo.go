//
//  internal/requestinfo/requestinfo.go
//
//  Per-request client fingerprint: address, user-agent family, device
//  class, bot flag, primary language, and (when a GeoLite2 database is
//  configured) country.  The struct is inert, so it is safe to log.
//
//  Dependencies
//  • github.com/avct/uasurfer           (UA parsing)
//  • github.com/oschwald/geoip2-golang  (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// Info describes the client behind one request.
type Info struct {
	IP      net.IP
	Browser string // "Chrome", "Firefox", ...
	Version string // "124" or "17.4"
	OS      string // "macOS", "Windows", "Android", ...
	Device  string // "Desktop", "Phone", "Tablet", ...
	Bot     bool
	Lang    string // first Accept-Language tag
	Country string // ISO code; empty without a GeoDB
}

// LogFields returns Info as zap key/value pairs.
func (i *Info) LogFields() []any {
	if i == nil {
		return nil
	}
	ip := ""
	if i.IP != nil {
		ip = i.IP.String()
	}
	return []any{
		"client_ip", ip,
		"browser", i.Browser,
		"device", i.Device,
		"bot", i.Bot,
		"country", i.Country,
	}
}

type ctxKey struct{}

// FromContext returns the Info stored by Middleware, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// NewContext returns ctx carrying info.
func NewContext(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

/*──────────────────────────── GeoLite2 ────────────────────────────────────*/

// GeoDB wraps a MaxMind reader.  A nil *GeoDB answers every lookup with "".
type GeoDB struct {
	r *geoip2.Reader
}

// OpenGeo opens a GeoLite2 Country or City database.
func OpenGeo(path string) (*GeoDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db %s: %w", path, err)
	}
	return &GeoDB{r: r}, nil
}

// Close releases the database.
func (g *GeoDB) Close() error {
	if g == nil {
		return nil
	}
	return g.r.Close()
}

// Country returns the ISO country code for ip, best effort.
func (g *GeoDB) Country(ip net.IP) string {
	if g == nil || ip == nil {
		return ""
	}
	rec, err := g.r.Country(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}

/*──────────────────────────── parsing ─────────────────────────────────────*/

// Parse builds Info from raw header values.
func Parse(ip net.IP, userAgent, acceptLang string, geo *GeoDB) *Info {
	u := uasurfer.Parse(userAgent)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return &Info{
		IP:      ip,
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: version(u.Browser.Version),
		OS:      osName,
		Device:  device(u.DeviceType),
		Bot:     u.IsBot(),
		Lang:    primaryLang(acceptLang),
		Country: geo.Country(ip),
	}
}

// version renders "major.minor", dropping a zero minor.
func version(v uasurfer.Version) string {
	if v.Major == 0 && v.Minor == 0 {
		return ""
	}
	if v.Minor == 0 {
		return strconv.Itoa(v.Major)
	}
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

func device(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// primaryLang extracts the first language tag before any ";q=" weight.
func primaryLang(al string) string {
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}
