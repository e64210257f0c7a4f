package sink

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTrapperServer runs a one-shot fake Zabbix trapper on a loopback port.
// It records the request it received and answers with the given response.
func startTrapperServer(t *testing.T, response senderResponse) (host string, port int, received *senderRequest) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	received = &senderRequest{}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		payload, err := readFrame(conn)
		if err != nil {
			return
		}
		_ = json.Unmarshal(payload, received)

		body, _ := json.Marshal(response)
		_, _ = conn.Write(frame(body))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port, received
}

func TestTrapperClient_Success(t *testing.T) {
	host, port, received := startTrapperServer(t, senderResponse{
		Response: "success",
		Info:     "processed: 1; failed: 0; total: 1; seconds spent: 0.000055",
	})
	client := &TrapperClient{Server: host, Port: port, Timeout: 2 * time.Second}

	err := client.Submit(context.Background(), "Client-1-Log-API", "mos.rating", 4.2)
	require.NoError(t, err)

	require.Len(t, received.Data, 1)
	assert.Equal(t, "sender data", received.Request)
	assert.Equal(t, "Client-1-Log-API", received.Data[0].Host)
	assert.Equal(t, "mos.rating", received.Data[0].Key)
	assert.Equal(t, "4.2", received.Data[0].Value)
}

func TestTrapperClient_PartialFailure(t *testing.T) {
	host, port, _ := startTrapperServer(t, senderResponse{
		Response: "success",
		Info:     "processed: 0; failed: 1; total: 1; seconds spent: 0.000041",
	})
	client := &TrapperClient{Server: host, Port: port, Timeout: 2 * time.Second}

	err := client.Submit(context.Background(), "Client-1-Log-API", "voip.loss", 0.5)

	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "voip.loss", partial.Key)
}

func TestTrapperClient_ServerFailureResponse(t *testing.T) {
	host, port, _ := startTrapperServer(t, senderResponse{
		Response: "failed",
		Info:     "host not found",
	})
	client := &TrapperClient{Server: host, Port: port, Timeout: 2 * time.Second}

	err := client.Submit(context.Background(), "Client-1-Log-API", "voip.jitter", 5)

	var dispatch *DispatchError
	require.ErrorAs(t, err, &dispatch)
	assert.Contains(t, dispatch.Error(), "host not found")
}

func TestTrapperClient_ConnectionRefused(t *testing.T) {
	// Grab a free port, then close the listener so nothing answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	client := &TrapperClient{Server: "127.0.0.1", Port: port, Timeout: 2 * time.Second}

	err = client.Submit(context.Background(), "Client-1-Log-API", "mos.rating", 4.2)

	var dispatch *DispatchError
	assert.ErrorAs(t, err, &dispatch)
}

func TestTrapperClient_GarbageResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = readFrame(conn)
		_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	client := &TrapperClient{Server: "127.0.0.1", Port: addr.Port, Timeout: 2 * time.Second}

	err = client.Submit(context.Background(), "Client-1-Log-API", "mos.rating", 4.2)

	var dispatch *DispatchError
	assert.ErrorAs(t, err, &dispatch)
}

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte(`{"request":"sender data"}`)
	framed := frame(payload)

	assert.Equal(t, byte('Z'), framed[0])
	assert.Equal(t, byte(0x01), framed[4])
	assert.Len(t, framed, headerLen+len(payload))

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write(framed)
	}()

	got, err := readFrame(server)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{4.2, "4.2"},
		{120, "120"},
		{0.5, "0.5"},
		{1000000, "1000000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatValue(tt.value))
		})
	}
}
