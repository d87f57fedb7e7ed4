// pkg/software/observation.go
package software

import (
	"fmt"
	"net/netip"
	"strings"
	"time"
)

// Category classifies what kind of software an observation refers to. It is
// purely descriptive; the registry's dedup and change detection never look
// at it.
type Category string

const (
	CategoryUnknown        Category = "UNKNOWN"
	CategoryWebServer      Category = "WEB_SERVER"
	CategoryWebBrowser     Category = "WEB_BROWSER"
	CategoryMailServer     Category = "MAIL_SERVER"
	CategoryMailClient     Category = "MAIL_CLIENT"
	CategoryFTPServer      Category = "FTP_SERVER"
	CategoryFTPClient      Category = "FTP_CLIENT"
	CategoryBrowserPlugin  Category = "BROWSER_PLUGIN"
	CategoryWebApp         Category = "WEBAPP"
	CategoryDatabaseServer Category = "DATABASE_SERVER"
	CategoryPrinter        Category = "PRINTER"
)

// Categories lists every known category, CategoryUnknown first.
func Categories() []Category {
	return []Category{
		CategoryUnknown,
		CategoryWebServer,
		CategoryWebBrowser,
		CategoryMailServer,
		CategoryMailClient,
		CategoryFTPServer,
		CategoryFTPClient,
		CategoryBrowserPlugin,
		CategoryWebApp,
		CategoryDatabaseServer,
		CategoryPrinter,
	}
}

// ParseCategory maps a config or report string onto a known Category.
// Matching is case-insensitive. Empty input yields CategoryUnknown without
// error; anything else unknown is an error.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryUnknown, nil
	}
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return known, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("unknown software category %q", s)
}

// Observation is a single reported sighting of a software name and version on
// a host, as extracted from traffic. It is never mutated after creation; the
// registry only replaces a stored Observation wholesale with a newer one for
// the same (host, name) key.
type Observation struct {
	Timestamp time.Time  `json:"timestamp"`
	Host      netip.Addr `json:"host"`
	Category  Category   `json:"software_category"`
	Name      string     `json:"name"`
	Version   Version    `json:"version"`
	// Unparsed keeps the original banner text verbatim as a display fallback.
	Unparsed string `json:"raw_unparsed_version"`
}

// NewObservation builds an Observation with the documented defaults:
// timestamp now, host unspecified, category UNKNOWN, and the raw banner text
// always populated.
func NewObservation(name string, version Version, raw string) Observation {
	return Observation{
		Timestamp: time.Now(),
		Category:  CategoryUnknown,
		Name:      name,
		Version:   version,
		Unparsed:  raw,
	}
}

// String renders the observation as "name version" for log and alert text.
func (o Observation) String() string {
	return o.Name + " " + o.Version.String()
}

// Conn identifies the two endpoints of the connection an observation was
// seen on. The originator is the side that opened the connection.
type Conn struct {
	OrigHost netip.Addr `json:"orig_h"`
	OrigPort uint16     `json:"orig_p"`
	RespHost netip.Addr `json:"resp_h"`
	RespPort uint16     `json:"resp_p"`
}

// EndpointLabel renders a host together with its role on conn: the
// connection originator is the client, everything else the server.
func EndpointLabel(host netip.Addr, conn Conn) string {
	if host == conn.OrigHost {
		return HostString(host) + " client"
	}
	return HostString(host) + " server"
}

// HostString renders an address for display, mapping the unspecified zero
// address to the empty string instead of netip's "invalid IP".
func HostString(a netip.Addr) string {
	if !a.IsValid() {
		return ""
	}
	return a.String()
}
