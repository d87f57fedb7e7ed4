// pkg/notify/notify_test.go
package notify

import (
	"bytes"
	"context"
	"net/netip"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/softwatch/softwatch/pkg/software"
)

func TestNewVersionChange(t *testing.T) {
	conn := software.Conn{
		OrigHost: netip.MustParseAddr("10.0.0.5"),
		OrigPort: 50123,
		RespHost: netip.MustParseAddr("192.168.1.1"),
		RespPort: 22,
	}

	obs := software.NewObservation("SSH",
		software.Version{Major: 2, Minor: 1, Addl: "OpenSSH_9.0"},
		"SSH-2.1-OpenSSH_9.0")
	obs.Host = conn.RespHost

	old := software.Version{Major: 2, Minor: 0, Addl: "OpenSSH_8.9"}

	n := NewVersionChange(conn, old, obs)

	require.Equal(t, KindSoftwareVersionChange, n.Kind)
	require.NotEmpty(t, n.ID)
	require.Equal(t, conn.RespHost, n.Host)
	require.Equal(t, "SSH 2.1.0-OpenSSH_9.0", n.Subject)
	require.Equal(t, "2.0.0-OpenSSH_8.9", n.OldVersion)
	require.Equal(t, "2.1.0-OpenSSH_9.0", n.NewVersion)
	require.Equal(t,
		"192.168.1.1 server switched from 2.0.0-OpenSSH_8.9 to SSH 2.1.0-OpenSSH_9.0",
		n.Message)
}

func TestNewVersionChangeClientSide(t *testing.T) {
	conn := software.Conn{
		OrigHost: netip.MustParseAddr("10.0.0.5"),
		RespHost: netip.MustParseAddr("192.168.1.1"),
	}
	obs := software.NewObservation("SSH", software.Version{Major: 2}, "SSH-2.0")
	obs.Host = conn.OrigHost

	n := NewVersionChange(conn, software.Version{Major: 1}, obs)
	require.Contains(t, n.Message, "10.0.0.5 client switched from")
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	notifier := NewLogNotifier(logger)

	obs := software.NewObservation("SSH", software.Version{Major: 2}, "SSH-2.0")
	obs.Host = netip.MustParseAddr("192.168.1.1")

	n := NewVersionChange(software.Conn{}, software.Version{Major: 1}, obs)
	require.NoError(t, notifier.Notify(context.Background(), n))

	out := buf.String()
	require.Contains(t, out, KindSoftwareVersionChange)
	require.Contains(t, out, "192.168.1.1")
	require.Contains(t, out, "switched from")
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, Notice) error { return f.err }

func TestMultiNotifierReturnsFirstError(t *testing.T) {
	var buf bytes.Buffer
	ok := NewLogNotifier(zerolog.New(&buf))

	n := Multi(ok, failingNotifier{err: context.DeadlineExceeded}, ok)
	err := n.Notify(context.Background(), Notice{Kind: KindSoftwareVersionChange})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	// Both log notifiers still ran.
	require.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}
