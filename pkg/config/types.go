// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for the softwatch service.
// It aggregates all other specific configuration structs.
type Config struct {
	Log     LogConfig     `description:"Logging configuration" koanf:"log"`
	Track   TrackConfig   `description:"Software tracking configuration" koanf:"track"`
	Sink    SinkConfig    `description:"Observation sink configuration" koanf:"sink"`
	NATS    NATSConfig    `description:"NATS intake configuration" koanf:"nats"`
	Metrics MetricsConfig `description:"Prometheus metrics configuration" koanf:"metrics"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level" koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `description:"Log format: json | text" koanf:"format" validate:"omitempty,oneof=json text"`
	File   string `description:"Log file path (optional, empty for stdout)" koanf:"file"`
}

// TrackConfig holds the tracking policy of the software registry.
type TrackConfig struct {
	// ScopePolicy selects which hosts are tracked at all.
	ScopePolicy string `description:"Host scope policy: all | local | remote | none" koanf:"scope_policy" validate:"oneof=all local remote none"`
	// Interesting lists software names whose version changes raise a notice.
	Interesting []string `description:"Software names alerting on version change" koanf:"interesting"`
	// Retention is how long an idle host stays in the registry.
	Retention time.Duration `description:"Idle retention window for host tables" koanf:"retention" validate:"required"`
	// LocalNetworks overrides the CIDRs considered local. Empty uses the
	// conventional private ranges.
	LocalNetworks []string `description:"CIDRs considered local" koanf:"local_networks"`
	QueueSize     int      `description:"Registration queue capacity" koanf:"queue_size" validate:"min=1"`
	CatalogFile   string   `description:"YAML catalog mapping software names to categories" koanf:"catalog_file"`
}

// SinkConfig selects where accepted observations are written. The structured
// log sink is always on; these add durable and streaming outputs.
type SinkConfig struct {
	SQLitePath  string `description:"SQLite observation log path (empty disables)" koanf:"sqlite_path"`
	NATSSubject string `description:"Subject for the observation stream (empty disables)" koanf:"nats_subject"`
	// NoticeSubject is where version-change notices are published.
	NoticeSubject string `description:"Subject for version-change notices (empty disables)" koanf:"notice_subject"`
}

// NATSConfig holds the banner-report intake settings.
type NATSConfig struct {
	URL     string `description:"NATS server URL" koanf:"url" validate:"required"`
	Subject string `description:"Banner report subject" koanf:"subject" validate:"required"`
	Queue   string `description:"Queue group for the intake subscription" koanf:"queue"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `description:"Serve /metrics" koanf:"enabled"`
	Addr    string `description:"Metrics listen address" koanf:"addr"`
}
