// pkg/analyzer/proto_http.go
package analyzer

import (
	"regexp"
	"strings"
)

type httpPlugin struct{}

var httpServerRE = regexp.MustCompile(`(?i)([a-zA-Z0-9._\-]+)[/ ]?([0-9.a-zA-Z_\-]*)`)

func (p *httpPlugin) Match(banner string) bool {
	return strings.Contains(strings.ToLower(banner), "server:")
}

// Extract pulls the software identity out of an HTTP Server response
// header, e.g. "Server: Apache/2.4.41 (Ubuntu)".
func (p *httpPlugin) Extract(banner string) *ServiceInfo {
	for _, line := range strings.Split(banner, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(line), "server:") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		info := strings.TrimSpace(parts[1])
		matches := httpServerRE.FindStringSubmatch(info)
		if len(matches) >= 2 {
			name := matches[1]
			version := ""
			if len(matches) > 2 {
				version = matches[2]
			}
			return &ServiceInfo{Name: name, Version: version}
		}
	}
	return nil
}

func init() {
	Register(&httpPlugin{})
}
