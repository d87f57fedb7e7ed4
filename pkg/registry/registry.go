// pkg/registry/registry.go
// Package registry maintains the per-host table of last-known software and
// owns the register/update/notify decision.
package registry

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/softwatch/softwatch/pkg/notify"
	"github.com/softwatch/softwatch/pkg/scope"
	"github.com/softwatch/softwatch/pkg/sink"
	"github.com/softwatch/softwatch/pkg/software"
	"github.com/softwatch/softwatch/pkg/telemetry"
)

// DefaultRetention is how long an idle host stays in the registry.
const DefaultRetention = 24 * time.Hour

// DefaultQueueSize bounds the number of observations waiting to be applied.
const DefaultQueueSize = 1024

// hostTable holds the most recent accepted observation per software name for
// one host. Only the apply goroutine mutates it, under the registry mutex.
type hostTable struct {
	entries map[string]software.Observation
}

type task struct {
	ctx  context.Context
	conn software.Conn
	obs  software.Observation
	// done, when set, marks a flush barrier instead of an observation.
	done chan struct{}
}

// Registry tracks last-known software per host. Observations enter through
// Found; the decision procedure runs on a single apply goroutine so that
// lookup-compare-decide-write is atomic per (host, name) key and observations
// for the same key apply in arrival order.
type Registry struct {
	mu    sync.Mutex
	hosts *expirable.LRU[netip.Addr, *hostTable]

	filter      scope.Filter
	policy      scope.Policy
	interesting map[string]struct{}
	retention   time.Duration
	queueSize   int

	sink     sink.Sink
	notifier notify.Notifier
	logger   zerolog.Logger

	queue chan task
	wg    sync.WaitGroup

	closeMu sync.RWMutex
	closed  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithSink sets the observation sink. Defaults to a zerolog sink.
func WithSink(s sink.Sink) Option {
	return func(r *Registry) { r.sink = s }
}

// WithNotifier sets the alert channel. Defaults to a zerolog notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(r *Registry) { r.notifier = n }
}

// WithScope sets the host-scope filter and policy applied by Found.
func WithScope(f scope.Filter, policy scope.Policy) Option {
	return func(r *Registry) {
		r.filter = f
		r.policy = policy
	}
}

// WithInteresting replaces the set of software names whose version changes
// raise a notice.
func WithInteresting(names ...string) Option {
	return func(r *Registry) {
		r.interesting = make(map[string]struct{}, len(names))
		for _, name := range names {
			r.interesting[name] = struct{}{}
		}
	}
}

// WithRetention sets the idle retention window for host tables.
func WithRetention(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.retention = d
		}
	}
}

// WithQueueSize sets the apply queue capacity.
func WithQueueSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.queueSize = n
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// New constructs a Registry. Call Start before feeding it observations and
// Close at service shutdown. Defaults: all hosts in scope, "SSH" interesting,
// 24h retention, log-only sink and notifier.
func New(opts ...Option) *Registry {
	r := &Registry{
		policy:      scope.AllHosts,
		interesting: map[string]struct{}{"SSH": {}},
		retention:   DefaultRetention,
		queueSize:   DefaultQueueSize,
		logger:      log.With().Str("component", "registry").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		r.sink = sink.NewLogSink(r.logger)
	}
	if r.notifier == nil {
		r.notifier = notify.NewLogNotifier(r.logger)
	}

	r.hosts = expirable.NewLRU[netip.Addr, *hostTable](0, r.onEvict, r.retention)
	r.queue = make(chan task, r.queueSize)
	return r
}

// Start launches the apply goroutine.
func (r *Registry) Start() {
	r.wg.Add(1)
	go r.run()
}

// Close stops accepting observations, drains the queue and releases the
// sink. It is safe to call once after Start.
func (r *Registry) Close() error {
	r.closeMu.Lock()
	if r.closed {
		r.closeMu.Unlock()
		return nil
	}
	r.closed = true
	r.closeMu.Unlock()

	close(r.queue)
	r.wg.Wait()
	return r.sink.Close()
}

// Found is the sole entry point for analyzers. It gates the observation on
// the configured scope policy: out of scope means false and no side effects
// at all. In scope, the observation is queued for registration and Found
// returns true. True means "accepted for processing"; a later suppression as
// already-known software is invisible to the caller.
func (r *Registry) Found(ctx context.Context, conn software.Conn, obs software.Observation) bool {
	if !r.inScope(obs.Host) {
		telemetry.ObservationsRejected.Inc()
		return false
	}

	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed {
		return false
	}

	r.queue <- task{ctx: ctx, conn: conn, obs: obs}
	telemetry.ObservationsAccepted.Inc()
	return true
}

// Flush blocks until every observation queued before the call has been
// applied.
func (r *Registry) Flush() {
	r.closeMu.RLock()
	if r.closed {
		r.closeMu.RUnlock()
		return
	}
	done := make(chan struct{})
	r.queue <- task{done: done}
	r.closeMu.RUnlock()
	<-done
}

// Lookup returns the current entry for a (host, name) key, if any.
func (r *Registry) Lookup(host netip.Addr, name string) (software.Observation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tbl, ok := r.hosts.Peek(host)
	if !ok {
		return software.Observation{}, false
	}
	obs, ok := tbl.entries[name]
	return obs, ok
}

// Hosts returns the addresses currently tracked.
func (r *Registry) Hosts() []netip.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hosts.Keys()
}

func (r *Registry) inScope(host netip.Addr) bool {
	if r.filter == nil {
		return r.policy != scope.Disabled
	}
	return r.filter.InScope(host, r.policy)
}

func (r *Registry) run() {
	defer r.wg.Done()
	for t := range r.queue {
		if t.done != nil {
			close(t.done)
			continue
		}
		r.register(t.ctx, t.conn, t.obs)
	}
}

// register applies the decision procedure for one accepted observation.
// Order matters: first sighting logs and stores; a version change of
// interesting software notifies, overwrites and logs; everything else is
// suppressed so that repeated identical sightings and uninteresting churn
// stay out of the log.
func (r *Registry) register(ctx context.Context, conn software.Conn, obs software.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tbl, ok := r.hosts.Get(obs.Host)
	if !ok {
		tbl = &hostTable{entries: make(map[string]software.Observation)}
	}

	old, seen := tbl.entries[obs.Name]
	switch {
	case !seen:
		tbl.entries[obs.Name] = obs
		r.writeSink(ctx, obs)
		telemetry.FirstSightings.WithLabelValues(string(obs.Category)).Inc()
		r.logger.Debug().
			Str("host", software.HostString(obs.Host)).
			Str("software", obs.String()).
			Msg("first sighting")

	case r.isInteresting(obs.Name) && !old.Version.Equal(obs.Version):
		notice := notify.NewVersionChange(conn, old.Version, obs)
		if err := r.notifier.Notify(ctx, notice); err != nil {
			r.logger.Warn().Err(err).Str("sub", notice.Subject).Msg("notice delivery failed")
		}
		tbl.entries[obs.Name] = obs
		r.writeSink(ctx, obs)
		telemetry.VersionChanges.WithLabelValues(obs.Name).Inc()

	default:
		// Same version, or a name nobody cares about: the stored entry
		// stays authoritative and nothing is logged.
		telemetry.ObservationsSuppressed.Inc()
	}

	// Re-adding the host table arms the idle retention window; registration
	// counts as activity.
	r.hosts.Add(obs.Host, tbl)
	telemetry.HostsTracked.Set(float64(r.hosts.Len()))
}

func (r *Registry) writeSink(ctx context.Context, obs software.Observation) {
	if err := r.sink.WriteObservation(ctx, obs); err != nil {
		telemetry.SinkWriteErrors.Inc()
		r.logger.Warn().Err(err).Str("software", obs.String()).Msg("sink write failed")
	}
}

func (r *Registry) isInteresting(name string) bool {
	_, ok := r.interesting[name]
	return ok
}

func (r *Registry) onEvict(host netip.Addr, _ *hostTable) {
	telemetry.HostEvictions.Inc()
	r.logger.Debug().Str("host", software.HostString(host)).Msg("host table evicted")
}
