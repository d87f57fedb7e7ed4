// pkg/sink/sqlite/sqlite_test.go
package sqlite

import (
	"context"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/softwatch/softwatch/pkg/software"
)

func newTestSink(t *testing.T) *Sink {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "softwatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestWriteObservationAppendsRows(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	obs := software.Observation{
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Host:      netip.MustParseAddr("192.168.1.1"),
		Category:  software.CategoryWebServer,
		Name:      "Apache",
		Version:   software.Version{Major: 2, Minor: 4, Minor2: 10, Addl: "beta1"},
		Unparsed:  "Apache/2.4.10-beta1",
	}
	require.NoError(t, s.WriteObservation(ctx, obs))

	// A second write for the same (host, name) appends; nothing is upserted.
	obs2 := obs
	obs2.Version = software.Version{Major: 2, Minor: 4, Minor2: 11}
	obs2.Unparsed = "Apache/2.4.11"
	require.NoError(t, s.WriteObservation(ctx, obs2))

	rows, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	require.Equal(t, "Apache/2.4.11", rows[0].Unparsed)
	require.Equal(t, "Apache/2.4.10-beta1", rows[1].Unparsed)

	got := rows[1]
	require.Equal(t, obs.Timestamp, got.Timestamp)
	require.Equal(t, obs.Host, got.Host)
	require.Equal(t, obs.Category, got.Category)
	require.Equal(t, obs.Name, got.Name)
	require.True(t, obs.Version.Equal(got.Version))
}

func TestWriteObservationUnspecifiedHost(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	obs := software.NewObservation("", software.Version{}, "nonsense")
	require.NoError(t, s.WriteObservation(ctx, obs))

	rows, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.False(t, rows[0].Host.IsValid())
	require.Equal(t, "nonsense", rows[0].Unparsed)
}
