package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/softwatch/softwatch/pkg/analyzer"
	"github.com/softwatch/softwatch/pkg/appctx"
	"github.com/softwatch/softwatch/pkg/notify"
	"github.com/softwatch/softwatch/pkg/registry"
	"github.com/softwatch/softwatch/pkg/scope"
	"github.com/softwatch/softwatch/pkg/sink"
	sqlitesink "github.com/softwatch/softwatch/pkg/sink/sqlite"
	"github.com/softwatch/softwatch/pkg/software"
)

// NewTrackCommand runs the tracking service: banner reports in over NATS,
// observation records out to the configured sinks, version-change notices to
// the alert channel.
func NewTrackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "track",
		Short: "Run the software tracking service",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, ok := appctx.Config(cmd.Context())
			if !ok {
				return errors.New("configuration manager missing from context")
			}
			cfg := manager.Get()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			policy, err := scope.ParsePolicy(cfg.Track.ScopePolicy)
			if err != nil {
				return err
			}
			filter, err := scope.NewCIDRFilter(cfg.Track.LocalNetworks)
			if err != nil {
				return err
			}

			catalog, err := software.LoadCatalog(cfg.Track.CatalogFile)
			if err != nil {
				return err
			}
			if err := catalog.Watch(ctx); err != nil {
				return err
			}

			nc, err := nats.Connect(cfg.NATS.URL,
				nats.Name(cliExecutable),
				nats.MaxReconnects(-1),
				nats.ReconnectWait(2*time.Second),
			)
			if err != nil {
				return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
			}
			defer nc.Close()

			obsSink, err := buildSink(nc, cfg.Sink.SQLitePath, cfg.Sink.NATSSubject)
			if err != nil {
				return err
			}

			notifier, err := buildNotifier(nc, cfg.Sink.NoticeSubject)
			if err != nil {
				return err
			}

			reg := registry.New(
				registry.WithScope(filter, policy),
				registry.WithInteresting(cfg.Track.Interesting...),
				registry.WithRetention(cfg.Track.Retention),
				registry.WithQueueSize(cfg.Track.QueueSize),
				registry.WithSink(obsSink),
				registry.WithNotifier(notifier),
			)
			reg.Start()
			defer func() {
				if err := reg.Close(); err != nil {
					log.Warn().Err(err).Msg("registry shutdown error")
				}
			}()

			if cfg.Metrics.Enabled {
				go serveMetrics(ctx, cfg.Metrics.Addr)
			}

			intake := analyzer.NewIntake(nc, reg, catalog)
			if err := intake.SetConfig(map[string]any{
				"subject": cfg.NATS.Subject,
				"queue":   cfg.NATS.Queue,
			}); err != nil {
				return err
			}

			log.Info().
				Str("policy", policy.String()).
				Strs("interesting", cfg.Track.Interesting).
				Dur("retention", cfg.Track.Retention).
				Msg("software tracker starting")

			return intake.Subscribe(ctx)
		},
	}
}

func buildSink(nc *nats.Conn, sqlitePath, natsSubject string) (sink.Sink, error) {
	logger := log.With().Str("component", "sink").Logger()
	sinks := []sink.Sink{sink.NewLogSink(logger)}

	if sqlitePath != "" {
		dbSink, err := sqlitesink.New(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite sink: %w", err)
		}
		sinks = append(sinks, dbSink)
	}
	if natsSubject != "" {
		natsSink, err := sink.NewNATSSink(nc, natsSubject)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, natsSink)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sink.Multi(logger, sinks...), nil
}

func buildNotifier(nc *nats.Conn, noticeSubject string) (notify.Notifier, error) {
	logger := log.With().Str("component", "notify").Logger()
	logNotifier := notify.NewLogNotifier(logger)
	if noticeSubject == "" {
		return logNotifier, nil
	}
	natsNotifier, err := notify.NewNATSNotifier(nc, noticeSubject)
	if err != nil {
		return nil, err
	}
	return notify.Multi(logNotifier, natsNotifier), nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn().Err(err).Msg("metrics endpoint failed")
	}
}
