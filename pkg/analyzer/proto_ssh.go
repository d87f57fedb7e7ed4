// pkg/analyzer/proto_ssh.go
package analyzer

import "strings"

type sshPlugin struct{}

func (p *sshPlugin) Match(banner string) bool {
	return strings.HasPrefix(banner, "SSH-")
}

// Extract parses banners like "SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.3".
// The name is the protocol ("SSH", the default interesting software); the
// version text keeps the protocol version and implementation string so that
// an implementation upgrade registers as a version change.
func (p *sshPlugin) Extract(banner string) *ServiceInfo {
	if !p.Match(banner) {
		return nil
	}

	rest := strings.TrimPrefix(banner, "SSH-")
	if rest == "" {
		return nil
	}
	if i := strings.IndexAny(rest, " \r\n"); i >= 0 {
		rest = rest[:i]
	}

	return &ServiceInfo{
		Name:    "SSH",
		Version: rest,
	}
}

func init() {
	Register(&sshPlugin{})
}
