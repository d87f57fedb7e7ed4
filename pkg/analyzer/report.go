// pkg/analyzer/report.go
// Package analyzer receives banner reports from protocol analyzers and feeds
// them into the software registry.
package analyzer

import (
	"net/netip"
	"time"

	"github.com/softwatch/softwatch/pkg/software"
)

// BannerReport is the wire form of one software sighting as produced by a
// protocol analyzer. Analyzers that already split the banner set Software
// (and optionally Version); the rest just forward the raw Banner text.
type BannerReport struct {
	TS    time.Time `json:"ts"`
	OrigH string    `json:"orig_h"`
	OrigP uint16    `json:"orig_p"`
	RespH string    `json:"resp_h"`
	RespP uint16    `json:"resp_p"`
	// Host is the address the software runs on. Defaults to the responder.
	Host     string `json:"host,omitempty"`
	Category string `json:"category,omitempty"`
	Software string `json:"software,omitempty"`
	Version  string `json:"version,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

// ToObservation converts a report into the connection context and
// observation handed to the registry. Unparseable addresses degrade to the
// unspecified address rather than failing; category strings that do not
// match a known category resolve through the catalog instead.
func (rep BannerReport) ToObservation(catalog *software.Catalog) (software.Conn, software.Observation) {
	conn := software.Conn{
		OrigHost: parseAddr(rep.OrigH),
		OrigPort: rep.OrigP,
		RespHost: parseAddr(rep.RespH),
		RespPort: rep.RespP,
	}

	var obs software.Observation
	if rep.Software != "" {
		raw := rep.Banner
		if raw == "" {
			raw = rep.Version
		}
		obs = software.NewObservation(rep.Software, software.ParseVersion(rep.Version), raw)
	} else if info := ExtractService(rep.Banner); info != nil {
		obs = software.NewObservation(info.Name, software.ParseVersion(info.Version), rep.Banner)
	} else {
		obs = software.ParseBanner(rep.Banner)
	}

	if !rep.TS.IsZero() {
		obs.Timestamp = rep.TS
	}

	obs.Host = parseAddr(rep.Host)
	if !obs.Host.IsValid() {
		obs.Host = conn.RespHost
	}

	if cat, err := software.ParseCategory(rep.Category); err == nil && cat != software.CategoryUnknown {
		obs.Category = cat
	} else if catalog != nil {
		obs.Category = catalog.Resolve(obs.Name)
	}

	return conn, obs
}

func parseAddr(s string) netip.Addr {
	if s == "" {
		return netip.Addr{}
	}
	a, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}
	}
	return a.Unmap()
}
