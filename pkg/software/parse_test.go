// pkg/software/parse_test.go
package software

import (
	"net/netip"
	"testing"
	"time"
)

func TestParseBanner(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantName    string
		wantVersion Version
	}{
		{
			name:        "well-formed server banner",
			raw:         "Apache/2.4.10-beta1",
			wantName:    "Apache",
			wantVersion: Version{Major: 2, Minor: 4, Minor2: 10, Addl: "beta1"},
		},
		{
			name:        "space separated",
			raw:         "nginx 1.25",
			wantName:    "nginx",
			wantVersion: Version{Major: 1, Minor: 25},
		},
		{
			name:        "distro suffix absorbed by addl",
			raw:         "lighttpd/1.4.55-1+deb10u1",
			wantName:    "lighttpd",
			wantVersion: Version{Major: 1, Minor: 4, Minor2: 55, Addl: "1+deb10u1"},
		},
		{
			name:        "no numeric run",
			raw:         "nonsense",
			wantName:    "",
			wantVersion: Version{},
		},
		{
			name:        "bare version without name",
			raw:         "2.4.10",
			wantName:    "",
			wantVersion: Version{Major: 2, Minor: 4, Minor2: 10},
		},
		{
			name:        "non-numeric component defaults to zero",
			raw:         "Foo/1.x.2",
			wantName:    "Foo",
			wantVersion: Version{Major: 1, Minor: 0, Minor2: 2},
		},
		{
			name:        "empty input",
			raw:         "",
			wantName:    "",
			wantVersion: Version{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			obs := ParseBanner(tc.raw)
			if obs.Name != tc.wantName {
				t.Errorf("name = %q, want %q", obs.Name, tc.wantName)
			}
			if !obs.Version.Equal(tc.wantVersion) {
				t.Errorf("version = %+v, want %+v", obs.Version, tc.wantVersion)
			}
			if obs.Unparsed != tc.raw {
				t.Errorf("raw text not preserved: %q", obs.Unparsed)
			}
			if obs.Host.IsValid() {
				t.Errorf("expected unspecified host, got %v", obs.Host)
			}
			if obs.Category != CategoryUnknown {
				t.Errorf("expected UNKNOWN category, got %v", obs.Category)
			}
			if time.Since(obs.Timestamp) > time.Minute {
				t.Errorf("timestamp not set to processing time: %v", obs.Timestamp)
			}
		})
	}
}

func TestParseBannerRoundTrip(t *testing.T) {
	obs := ParseBanner("Apache/2.4.10-beta1")
	if got := obs.String(); got != "Apache 2.4.10-beta1" {
		t.Errorf("formatted observation = %q, want %q", got, "Apache 2.4.10-beta1")
	}
}

func TestParseVersion(t *testing.T) {
	got := ParseVersion("2.0-OpenSSH_8.9p1")
	want := Version{Major: 2, Minor: 0, Minor2: 0, Addl: "8.9p1"}
	if !got.Equal(want) {
		t.Errorf("ParseVersion = %+v, want %+v", got, want)
	}
}

func TestEndpointLabel(t *testing.T) {
	conn := Conn{
		OrigHost: netip.MustParseAddr("10.0.0.5"),
		OrigPort: 50123,
		RespHost: netip.MustParseAddr("192.168.1.1"),
		RespPort: 22,
	}

	if got := EndpointLabel(conn.OrigHost, conn); got != "10.0.0.5 client" {
		t.Errorf("originator label = %q", got)
	}
	if got := EndpointLabel(conn.RespHost, conn); got != "192.168.1.1 server" {
		t.Errorf("responder label = %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("web_server"); err != nil || c != CategoryWebServer {
		t.Errorf("ParseCategory(web_server) = %v, %v", c, err)
	}
	if c, err := ParseCategory(""); err != nil || c != CategoryUnknown {
		t.Errorf("ParseCategory(empty) = %v, %v", c, err)
	}
	if _, err := ParseCategory("bogus"); err == nil {
		t.Error("expected error for unknown category")
	}
}
