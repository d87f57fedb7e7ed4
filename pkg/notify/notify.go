// pkg/notify/notify.go
// Package notify carries version-change notices from the registry to the
// alerting channel.
package notify

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/softwatch/softwatch/pkg/software"
)

// KindSoftwareVersionChange is the only notice kind the tracker raises.
const KindSoftwareVersionChange = "Software_Version_Change"

// Notice is a structured alert about a tracked host.
type Notice struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Timestamp time.Time         `json:"timestamp"`
	Host      netip.Addr        `json:"host"`
	Conn      software.Conn     `json:"conn"`
	Message   string            `json:"msg"`
	Subject   string            `json:"sub"`
	Category  software.Category `json:"software_category"`
	// Rendered old and new versions, for consumers that do not want to
	// re-parse the message text.
	OldVersion string `json:"old_version"`
	NewVersion string `json:"new_version"`
}

// NewVersionChange builds the notice for an interesting software version
// change: message text carries the endpoint label, the old version and the
// new observation; the subject is the formatted new observation.
func NewVersionChange(conn software.Conn, old software.Version, obs software.Observation) Notice {
	endpoint := software.EndpointLabel(obs.Host, conn)
	return Notice{
		ID:         uuid.New().String(),
		Kind:       KindSoftwareVersionChange,
		Timestamp:  obs.Timestamp,
		Host:       obs.Host,
		Conn:       conn,
		Message:    fmt.Sprintf("%s switched from %s to %s", endpoint, old.String(), obs.String()),
		Subject:    obs.String(),
		Category:   obs.Category,
		OldVersion: old.String(),
		NewVersion: obs.Version.String(),
	}
}

// Notifier delivers notices. Implementations must not block the registry for
// long; delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the structured log at warn level.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier writing through the given logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, notice Notice) error {
	n.logger.Warn().
		Str("kind", notice.Kind).
		Str("host", software.HostString(notice.Host)).
		Str("sub", notice.Subject).
		Str("software_category", string(notice.Category)).
		Str("old_version", notice.OldVersion).
		Str("new_version", notice.NewVersion).
		Msg(notice.Message)
	return nil
}

type multiNotifier []Notifier

// Multi fans a notice out to every notifier, returning the first error.
func Multi(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

func (m multiNotifier) Notify(ctx context.Context, n Notice) error {
	var firstErr error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
