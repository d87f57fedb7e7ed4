// pkg/config/config.go
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/nats-io/nats.go"
	"github.com/spf13/pflag"
)

// Global Koanf instance, initialized once at startup.
var (
	k    *koanf.Koanf
	once sync.Once
)

// InitGlobalConfig initializes the global Koanf instance.
// This should be called early in the application lifecycle, before Load.
func InitGlobalConfig() {
	once.Do(func() {
		k = koanf.New(".")
	})
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	validate      *validator.Validate
	mu            sync.RWMutex // To protect currentConfig during runtime updates
}

// NewManager creates a new config Manager, initializing the global Koanf
// instance if not already done.
func NewManager() *Manager {
	InitGlobalConfig()
	return &Manager{
		koanfInstance: k,
		validate:      validator.New(),
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default
// values. These serve as the baseline if no other sources override them.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
		Track: TrackConfig{
			ScopePolicy: "local",
			Interesting: []string{"SSH"},
			Retention:   24 * time.Hour,
			QueueSize:   1024,
		},
		Sink: SinkConfig{
			SQLitePath:    "",
			NATSSubject:   "",
			NoticeSubject: "softwatch.notices",
		},
		NATS: NATSConfig{
			URL:     nats.DefaultURL,
			Subject: "softwatch.banners",
			Queue:   "softwatch",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9175",
		},
	}
}

// Load loads configuration from the sources in precedence order: hardcoded
// defaults, then the optional YAML config file, then command-line flags.
// It populates the manager's currentConfig.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	defaultCfgMap := DefaultConfigAsMap()
	if err := m.koanfInstance.Load(confmap.Provider(defaultCfgMap, "."), nil); err != nil {
		return fmt.Errorf("error loading hardcoded defaults into koanf: %w", err)
	}

	if customConfigFilePath != "" {
		if err := m.koanfInstance.Load(file.Provider(customConfigFilePath), koanfyaml.Parser()); err != nil {
			return fmt.Errorf("error loading config file %s: %w", customConfigFilePath, err)
		}
	}

	// Command-line flags take the highest precedence.
	if flags != nil {
		if err := m.koanfInstance.Load(posflag.Provider(flags, ".", m.koanfInstance), nil); err != nil {
			return fmt.Errorf("error loading command-line flags: %w", err)
		}

		debugFlag := flags.Lookup("debug")
		if debugFlag != nil && debugFlag.Value.String() == "true" {
			_ = m.koanfInstance.Set("log.level", "debug")
		}
	}

	var newCfg Config
	if err := m.koanfInstance.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}

	if err := m.validate.Struct(newCfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	m.currentConfig = newCfg

	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfgCopy := m.currentConfig
	return cfgCopy
}

// DefaultConfigAsMap converts the DefaultConfig struct to a
// map[string]interface{} for Koanf's confmap.Provider. This is a bit manual
// but ensures Koanf knows all keys.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		// Log configuration
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,
		"log.file":   def.Log.File,

		// Tracking configuration
		"track.scope_policy":   def.Track.ScopePolicy,
		"track.interesting":    def.Track.Interesting,
		"track.retention":      def.Track.Retention,
		"track.local_networks": def.Track.LocalNetworks,
		"track.queue_size":     def.Track.QueueSize,
		"track.catalog_file":   def.Track.CatalogFile,

		// Sink configuration
		"sink.sqlite_path":    def.Sink.SQLitePath,
		"sink.nats_subject":   def.Sink.NATSSubject,
		"sink.notice_subject": def.Sink.NoticeSubject,

		// Intake configuration
		"nats.url":     def.NATS.URL,
		"nats.subject": def.NATS.Subject,
		"nats.queue":   def.NATS.Queue,

		// Metrics configuration
		"metrics.enabled": def.Metrics.Enabled,
		"metrics.addr":    def.Metrics.Addr,
	}
}

// BindFlags defines command-line flags corresponding to configuration
// settings. These flags allow overriding config file settings.
// This function should be called when setting up Cobra commands.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	flags.String("log.level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("track.scope_policy", defaults.Track.ScopePolicy, "Host scope policy (all, local, remote, none)")
	flags.Duration("track.retention", defaults.Track.Retention, "Idle retention window for host tables")
	flags.StringSlice("track.interesting", defaults.Track.Interesting, "Software names alerting on version change")
	flags.String("nats.url", defaults.NATS.URL, "NATS server URL")
	flags.String("sink.sqlite_path", defaults.Sink.SQLitePath, "SQLite observation log path")
	flags.String("metrics.addr", defaults.Metrics.Addr, "Metrics listen address")

	var flagvar bool
	flags.BoolVar(&flagvar, "debug", false, "Enable debug logging")

	// Note: The main --config / -c flag for specifying the config file path
	// is defined directly on the root Cobra command's PersistentFlags.
}
