// pkg/analyzer/proto.go
package analyzer

import "sync"

// ServiceInfo is the name and raw version text extracted from a
// protocol-specific banner.
type ServiceInfo struct {
	Name    string
	Version string
}

// ProtoPlugin recognizes one protocol's banner shape and extracts the
// software identity from it.
type ProtoPlugin interface {
	Match(banner string) bool
	Extract(banner string) *ServiceInfo
}

var (
	pluginsMu sync.RWMutex
	plugins   []ProtoPlugin
)

// Register adds a plugin to the extraction chain. Called from plugin init
// functions.
func Register(p ProtoPlugin) {
	pluginsMu.Lock()
	defer pluginsMu.Unlock()
	plugins = append(plugins, p)
}

// ExtractService runs the banner through the registered plugins and returns
// the first extraction, or nil when no plugin recognizes it. Callers fall
// back to the generic version heuristic on nil.
func ExtractService(banner string) *ServiceInfo {
	pluginsMu.RLock()
	defer pluginsMu.RUnlock()
	for _, p := range plugins {
		if !p.Match(banner) {
			continue
		}
		if info := p.Extract(banner); info != nil {
			return info
		}
	}
	return nil
}
