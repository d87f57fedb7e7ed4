// pkg/notify/nats.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/softwatch/softwatch/pkg/software"
)

// NATSNotifier publishes notices to a NATS subject as JSON, carrying the key
// fields in headers so consumers can route without decoding the body.
type NATSNotifier struct {
	nc      *nats.Conn
	subject string
}

// NewNATSNotifier creates a notifier publishing to subject over nc.
func NewNATSNotifier(nc *nats.Conn, subject string) (*NATSNotifier, error) {
	if nc == nil {
		return nil, fmt.Errorf("nats connection must not be nil")
	}
	if subject == "" {
		return nil, fmt.Errorf("nats subject must not be empty")
	}
	return &NATSNotifier{nc: nc, subject: subject}, nil
}

// Notify implements Notifier.
func (n *NATSNotifier) Notify(_ context.Context, notice Notice) error {
	if !n.nc.IsConnected() {
		return fmt.Errorf("NATS connection not available")
	}

	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}

	headers := nats.Header{}
	headers.Set("x-notice-id", notice.ID)
	headers.Set("x-kind", notice.Kind)
	headers.Set("x-host", software.HostString(notice.Host))
	headers.Set("x-software", notice.Subject)

	msg := &nats.Msg{
		Subject: n.subject,
		Data:    data,
		Header:  headers,
	}
	if err := n.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish notice: %w", err)
	}
	return nil
}
