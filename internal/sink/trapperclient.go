package sink

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Zabbix protocol framing: 4-byte magic, protocol flag 0x01, then the payload
// length as a little-endian uint32 followed by 4 reserved zero bytes.
var zabbixMagic = []byte{'Z', 'B', 'X', 'D', 0x01}

const headerLen = 13

// maxResponseLen caps how large a trapper response we are willing to read.
// Real responses are under a kilobyte.
const maxResponseLen = 16 * 1024

// TrapperClient submits data points by speaking the Zabbix trapper ("sender
// data") protocol directly over TCP, avoiding the external binary entirely.
type TrapperClient struct {
	// Server is the Zabbix server or proxy address.
	Server string
	// Port is the trapper port, normally 10051.
	Port int
	// Timeout bounds the whole exchange: dial, write, and read.
	Timeout time.Duration

	// DialContext can be overridden in tests. Defaults to a net.Dialer.
	DialContext func(ctx context.Context, network, addr string) (net.Conn, error)
}

type senderRequest struct {
	Request string       `json:"request"`
	Data    []senderItem `json:"data"`
}

type senderItem struct {
	Host  string `json:"host"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type senderResponse struct {
	Response string `json:"response"`
	Info     string `json:"info"`
}

// Submit sends one value over the trapper protocol and interprets the
// server's summary. See the Sink interface for the error contract.
func (c *TrapperClient) Submit(ctx context.Context, target, key string, value float64) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(senderRequest{
		Request: "sender data",
		Data: []senderItem{{
			Host:  target,
			Key:   key,
			Value: formatValue(value),
		}},
	})
	if err != nil {
		return &DispatchError{Key: key, Err: fmt.Errorf("encode request: %w", err)}
	}

	dial := c.DialContext
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	addr := net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
	conn, err := dial(ctx, "tcp", addr)
	if err != nil {
		return &DispatchError{Key: key, Err: fmt.Errorf("connect %s: %w", addr, err)}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(frame(payload)); err != nil {
		return &DispatchError{Key: key, Err: fmt.Errorf("write request: %w", err)}
	}

	resp, err := readFrame(conn)
	if err != nil {
		return &DispatchError{Key: key, Err: fmt.Errorf("read response: %w", err)}
	}

	var parsed senderResponse
	if err := json.Unmarshal(resp, &parsed); err != nil {
		return &DispatchError{Key: key, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Response != "success" {
		return &DispatchError{Key: key, Err: fmt.Errorf("server response %q: %s", parsed.Response, parsed.Info)}
	}
	// Protocol-level success still reports per-item rejections in the info
	// summary, e.g. "processed: 0; failed: 1; total: 1".
	if !strings.Contains(parsed.Info, markerNoFailed) {
		return &PartialError{Key: key, Output: parsed.Info}
	}
	return nil
}

// frame wraps payload in the Zabbix protocol header.
func frame(payload []byte) []byte {
	buf := make([]byte, headerLen+len(payload))
	copy(buf, zabbixMagic)
	binary.LittleEndian.PutUint32(buf[5:9], uint32(len(payload)))
	// bytes 9-13 are reserved and stay zero
	copy(buf[headerLen:], payload)
	return buf
}

// readFrame reads one header-prefixed payload from r.
func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	for i, b := range zabbixMagic {
		if header[i] != b {
			return nil, fmt.Errorf("unexpected protocol header %q", header[:5])
		}
	}
	length := binary.LittleEndian.Uint32(header[5:9])
	if length > maxResponseLen {
		return nil, fmt.Errorf("response too large: %d bytes", length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
