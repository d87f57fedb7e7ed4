// pkg/analyzer/intake.go
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"

	"github.com/softwatch/softwatch/pkg/software"
	"github.com/softwatch/softwatch/pkg/telemetry"
)

// Tracker is what the intake needs from the registry.
type Tracker interface {
	Found(ctx context.Context, conn software.Conn, obs software.Observation) bool
}

// Intake subscribes to the banner-report subject and forwards each report to
// the tracker. Malformed reports are counted and dropped; nothing on this
// path is fatal.
type Intake struct {
	nc      *nats.Conn
	tracker Tracker
	catalog *software.Catalog
	subject string
	queue   string
	logger  zerolog.Logger

	sub *nats.Subscription
}

// NewIntake wires an intake to a NATS connection and a tracker. The catalog
// may be nil when no category rules are configured.
func NewIntake(nc *nats.Conn, tracker Tracker, catalog *software.Catalog) *Intake {
	return &Intake{
		nc:      nc,
		tracker: tracker,
		catalog: catalog,
		subject: "softwatch.banners",
		queue:   "softwatch",
		logger:  log.With().Str("component", "intake").Logger(),
	}
}

// SetConfig applies intake options from a raw config map.
func (in *Intake) SetConfig(cfg map[string]any) error {
	for key, val := range cfg {
		switch key {
		case "subject":
			s, err := cast.ToStringE(val)
			if err != nil || s == "" {
				return fmt.Errorf("invalid intake subject: %v", val)
			}
			in.subject = s
		case "queue":
			s, err := cast.ToStringE(val)
			if err != nil {
				return fmt.Errorf("invalid intake queue group: %v", val)
			}
			in.queue = s
		default:
			return fmt.Errorf("unknown intake config key %q", key)
		}
	}
	return nil
}

// Subscribe starts consuming banner reports and blocks until ctx is done,
// then drains the subscription.
func (in *Intake) Subscribe(ctx context.Context) error {
	sub, err := in.nc.QueueSubscribe(in.subject, in.queue, in.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", in.subject, err)
	}
	in.sub = sub
	in.logger.Info().Str("subject", in.subject).Str("queue", in.queue).Msg("subscribed to banner reports")

	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		return fmt.Errorf("drain subscription: %w", err)
	}
	return nil
}

func (in *Intake) handleMessage(msg *nats.Msg) {
	var rep BannerReport
	if err := json.Unmarshal(msg.Data, &rep); err != nil {
		telemetry.IntakeReports.WithLabelValues("invalid").Inc()
		in.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed banner report")
		return
	}
	if rep.Software == "" && rep.Banner == "" {
		telemetry.IntakeReports.WithLabelValues("empty").Inc()
		return
	}

	conn, obs := rep.ToObservation(in.catalog)
	if in.tracker.Found(context.Background(), conn, obs) {
		telemetry.IntakeReports.WithLabelValues("accepted").Inc()
	} else {
		telemetry.IntakeReports.WithLabelValues("out_of_scope").Inc()
	}
}
