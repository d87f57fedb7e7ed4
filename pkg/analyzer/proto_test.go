package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractServiceSSH(t *testing.T) {
	info := ExtractService("SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.1")
	require.NotNil(t, info)
	require.Equal(t, "SSH", info.Name)
	require.Equal(t, "2.0-OpenSSH_8.9p1", info.Version)
}

func TestExtractServiceHTTP(t *testing.T) {
	banner := "HTTP/1.1 200 OK\r\nServer: nginx/1.25.3\r\nContent-Length: 0\r\n"
	info := ExtractService(banner)
	require.NotNil(t, info)
	require.Equal(t, "nginx", info.Name)
	require.Equal(t, "1.25.3", info.Version)
}

func TestExtractServiceNoMatch(t *testing.T) {
	require.Nil(t, ExtractService("220 mail.example.com ESMTP ready"))
	require.Nil(t, ExtractService(""))
}

func TestToObservationUsesPluginExtraction(t *testing.T) {
	rep := BannerReport{
		RespH:  "192.168.1.1",
		RespP:  22,
		Banner: "SSH-2.0-OpenSSH_8.9p1",
	}
	_, obs := rep.ToObservation(nil)
	require.Equal(t, "SSH", obs.Name)
	require.Equal(t, uint64(2), obs.Version.Major)
	require.Equal(t, uint64(0), obs.Version.Minor)
	require.Equal(t, "8.9p1", obs.Version.Addl)
	require.Equal(t, "SSH-2.0-OpenSSH_8.9p1", obs.Unparsed)
}
