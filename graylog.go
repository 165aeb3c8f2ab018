// FILE: graylog.go
package dlog

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// Graylog is the structured remote sink. It consumes entries directly
// rather than formatted lines, packaging each as a zlib-compressed
// GELF 1.1 message over UDP. The client may be shared between engines;
// delivery is best-effort and send errors are swallowed.
type Graylog struct {
	mu       sync.Mutex
	subs     Subsystems
	ident    string
	hostname string
	conn     net.Conn
	buf      bytes.Buffer
}

// NewGraylog creates an unconnected client with the given identifier.
func NewGraylog(subs Subsystems, ident string) *Graylog {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return &Graylog{
		subs:     subs,
		ident:    ident,
		hostname: hostname,
	}
}

// SetDestination points the client at a GELF UDP input.
func (g *Graylog) SetDestination(host string, port int) error {
	conn, err := net.Dial("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	g.mu.Lock()
	if g.conn != nil {
		_ = g.conn.Close()
	}
	g.conn = conn
	g.mu.Unlock()
	return nil
}

// Close releases the connection.
func (g *Graylog) Close() {
	g.mu.Lock()
	if g.conn != nil {
		_ = g.conn.Close()
		g.conn = nil
	}
	g.mu.Unlock()
}

type gelfMessage struct {
	Version      string  `json:"version"`
	Host         string  `json:"host"`
	ShortMessage string  `json:"short_message"`
	Timestamp    float64 `json:"timestamp"`
	Ident        string  `json:"_ident"`
	Level        int     `json:"_level"`
	Subsystem    int     `json:"_subsystem"`
	Thread       int64   `json:"_thread"`
}

// LogEntry ships one entry. No-op while unconnected.
func (g *Graylog) LogEntry(e *Entry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return
	}

	msg := gelfMessage{
		Version:      "1.1",
		Host:         g.hostname,
		ShortMessage: string(e.payload),
		Timestamp:    float64(e.stamp.UnixNano()) / 1e9,
		Ident:        g.ident,
		Level:        e.level,
		Subsystem:    e.subsys,
	}
	msg.Thread = e.thread

	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}

	g.buf.Reset()
	zw := zlib.NewWriter(&g.buf)
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return
	}
	if err := zw.Close(); err != nil {
		return
	}
	_, _ = g.conn.Write(g.buf.Bytes())
}
