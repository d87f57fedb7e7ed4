// pkg/software/catalog.go
package software

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// CatalogRule assigns a category to a known software name.
type CatalogRule struct {
	Name     string   `yaml:"name"`
	Category Category `yaml:"category"`
}

// Catalog maps software names onto categories at intake time. Lookups are
// case-insensitive exact matches. An empty catalog resolves everything to
// CategoryUnknown.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]Category
	path   string
	logger zerolog.Logger
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]Category),
		logger: log.With().Str("component", "catalog").Logger(),
	}
}

// LoadCatalog reads catalog rules from a YAML file. An empty path yields an
// empty catalog, which is the normal headless configuration.
func LoadCatalog(path string) (*Catalog, error) {
	c := NewCatalog()
	if path == "" {
		return c, nil
	}
	c.path = path
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Resolve returns the category configured for name, or CategoryUnknown.
func (c *Catalog) Resolve(name string) Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cat, ok := c.byName[strings.ToLower(name)]; ok {
		return cat
	}
	return CategoryUnknown
}

// Len returns the number of loaded rules.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

func (c *Catalog) reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	rules, err := parseCatalogYAML(data)
	if err != nil {
		return fmt.Errorf("parse catalog file %s: %w", c.path, err)
	}

	byName := make(map[string]Category, len(rules))
	for _, rule := range rules {
		// Already validated; normalizes case and maps empty to UNKNOWN.
		cat, _ := ParseCategory(string(rule.Category))
		byName[strings.ToLower(rule.Name)] = cat
	}

	c.mu.Lock()
	c.byName = byName
	c.mu.Unlock()
	return nil
}

// Watch reloads the catalog whenever the backing file changes, until ctx is
// done. It returns immediately for catalogs without a backing file.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := watcher.Add(c.path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch catalog file %s: %w", c.path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
					continue
				}
				if err := c.reload(); err != nil {
					// Keep serving the previous rules on a bad edit.
					c.logger.Warn().Err(err).Msg("catalog reload failed")
					continue
				}
				c.logger.Info().Int("rules", c.Len()).Msg("catalog reloaded")
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn().Err(err).Msg("catalog watcher error")
			}
		}
	}()
	return nil
}

// parseCatalogYAML accepts either a bare list of rules or a document with a
// top-level "rules" key wrapping the list.
func parseCatalogYAML(data []byte) ([]CatalogRule, error) {
	var rules []CatalogRule

	if err := yaml.Unmarshal(data, &rules); err == nil && len(rules) > 0 {
		return rules, validateCatalogRules(rules)
	}

	var wrapper struct {
		Rules []CatalogRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	rules = wrapper.Rules
	return rules, validateCatalogRules(rules)
}

func validateCatalogRules(rules []CatalogRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("no catalog rules found")
	}
	for i, rule := range rules {
		if rule.Name == "" {
			return fmt.Errorf("invalid catalog rule at index %d: missing name", i)
		}
		if _, err := ParseCategory(string(rule.Category)); err != nil {
			return fmt.Errorf("invalid catalog rule at index %d: %w", i, err)
		}
	}
	return nil
}
