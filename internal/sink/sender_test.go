package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender writes a shell script standing in for the zabbix_sender binary
// and returns its path.
func fakeSender(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zabbix_sender")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func newSender(path string) *SenderClient {
	return &SenderClient{
		Path:    path,
		Server:  "zabbix-server",
		Port:    10051,
		Timeout: 5 * time.Second,
	}
}

func TestSenderClient_Success(t *testing.T) {
	path := fakeSender(t, `echo "info from server: \"processed: 1; failed: 0; total: 1; seconds spent: 0.000042\""`)
	client := newSender(path)

	err := client.Submit(context.Background(), "Client-1-Log-API", "mos.rating", 4.2)
	assert.NoError(t, err)
}

func TestSenderClient_PartialFailure(t *testing.T) {
	path := fakeSender(t, `echo "info from server: \"processed: 0; failed: 1; total: 1; seconds spent: 0.000040\""`)
	client := newSender(path)

	err := client.Submit(context.Background(), "Client-1-Log-API", "mos.rating", 4.2)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "mos.rating", partial.Key)
	assert.Contains(t, partial.Output, "failed: 1")
}

func TestSenderClient_NonZeroExit(t *testing.T) {
	path := fakeSender(t, `echo "zabbix_sender [1]: connection refused" >&2; exit 1`)
	client := newSender(path)

	err := client.Submit(context.Background(), "Client-1-Log-API", "voip.latency", 120)

	var dispatch *DispatchError
	require.ErrorAs(t, err, &dispatch)
	assert.Equal(t, "voip.latency", dispatch.Key)
	assert.Contains(t, dispatch.Error(), "connection refused")
}

func TestSenderClient_MissingBinary(t *testing.T) {
	client := newSender(filepath.Join(t.TempDir(), "does-not-exist"))

	err := client.Submit(context.Background(), "Client-1-Log-API", "voip.jitter", 5)

	var dispatch *DispatchError
	assert.ErrorAs(t, err, &dispatch)
}

func TestSenderClient_Timeout(t *testing.T) {
	path := fakeSender(t, `sleep 10`)
	client := newSender(path)
	client.Timeout = 100 * time.Millisecond

	start := time.Now()
	err := client.Submit(context.Background(), "Client-1-Log-API", "voip.loss", 0.5)

	var dispatch *DispatchError
	require.ErrorAs(t, err, &dispatch)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSenderClient_ValueFormatting(t *testing.T) {
	// The fake prints its arguments so the test can assert on the exact
	// command line passed to zabbix_sender.
	path := fakeSender(t, `echo "$@" > "$(dirname "$0")/args"; echo "processed: 1; failed: 0"`)
	client := newSender(path)

	require.NoError(t, client.Submit(context.Background(), "Client-1-Log-API", "voip.latency", 120))

	raw, err := os.ReadFile(filepath.Join(filepath.Dir(path), "args"))
	require.NoError(t, err)
	args := string(raw)
	assert.Contains(t, args, "-z zabbix-server")
	assert.Contains(t, args, "-p 10051")
	assert.Contains(t, args, "-s Client-1-Log-API")
	assert.Contains(t, args, "-k voip.latency")
	assert.Contains(t, args, "-o 120")
	assert.NotContains(t, args, "120.000")
}

func TestSenderClient_ContextCanceled(t *testing.T) {
	path := fakeSender(t, `sleep 10`)
	client := newSender(path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Submit(ctx, "Client-1-Log-API", "mos.rating", 4.2)

	var dispatch *DispatchError
	assert.ErrorAs(t, err, &dispatch)
}
