// pkg/sink/sink.go
// Package sink defines the durable observation log the registry writes to.
// Every accepted, non-suppressed observation produces exactly one record;
// sinks are append-only and never rewrite or delete prior records.
package sink

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/softwatch/softwatch/pkg/software"
)

// Sink is the minimal contract the registry needs to persist observations.
type Sink interface {
	WriteObservation(ctx context.Context, obs software.Observation) error
	Close() error
}

// LogSink emits one structured log record per observation. It is the
// always-on sink; the sqlite and NATS sinks layer on top of it via Multi.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink writing through the given logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// WriteObservation implements Sink.
func (s *LogSink) WriteObservation(_ context.Context, obs software.Observation) error {
	s.logger.Info().
		Time("timestamp", obs.Timestamp).
		Str("host", software.HostString(obs.Host)).
		Str("software_category", string(obs.Category)).
		Str("name", obs.Name).
		Str("version", obs.Version.String()).
		Str("raw_unparsed_version", obs.Unparsed).
		Msg("software observed")
	return nil
}

// Close implements Sink.
func (s *LogSink) Close() error { return nil }

type multiSink struct {
	sinks  []Sink
	logger zerolog.Logger
}

// Multi fans a write out to every sink. Individual write failures are logged
// and do not stop the remaining sinks; the sink contract toward the registry
// is best-effort.
func Multi(logger zerolog.Logger, sinks ...Sink) Sink {
	return &multiSink{sinks: sinks, logger: logger}
}

func (m *multiSink) WriteObservation(ctx context.Context, obs software.Observation) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.WriteObservation(ctx, obs); err != nil {
			m.logger.Warn().Err(err).Str("name", obs.Name).Msg("observation sink write failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *multiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
