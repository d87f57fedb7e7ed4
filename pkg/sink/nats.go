// pkg/sink/nats.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/softwatch/softwatch/pkg/software"
)

// NATSSink publishes each observation record as JSON to a NATS subject for
// downstream consumers. The connection is owned by the caller.
type NATSSink struct {
	nc      *nats.Conn
	subject string
}

// NewNATSSink creates a sink publishing to subject over nc.
func NewNATSSink(nc *nats.Conn, subject string) (*NATSSink, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection must not be nil")
	}
	if subject == "" {
		return nil, fmt.Errorf("nats subject must not be empty")
	}
	return &NATSSink{nc: nc, subject: subject}, nil
}

// WriteObservation implements Sink.
func (s *NATSSink) WriteObservation(_ context.Context, obs software.Observation) error {
	if !s.nc.IsConnected() {
		return fmt.Errorf("NATS connection not available")
	}

	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to marshal observation: %w", err)
	}

	headers := nats.Header{}
	headers.Set("x-host", software.HostString(obs.Host))
	headers.Set("x-software", obs.Name)
	headers.Set("x-category", string(obs.Category))

	msg := &nats.Msg{
		Subject: s.subject,
		Data:    data,
		Header:  headers,
	}
	if err := s.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish observation: %w", err)
	}
	return nil
}

// Close implements Sink. The connection itself stays open for its owner.
func (s *NATSSink) Close() error { return nil }
