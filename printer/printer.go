// Package printer opens the transport a rendered ESC/POS stream is sent to.
//
// Two transports cover the deployments this runs on: "file" writes to a
// plain file or a character device such as /dev/usb/lp0, and "network"
// speaks raw TCP to an ethernet or wifi printer, conventionally on port
// 9100. Serial and raw-USB printers need a device driver and are rejected
// at the config layer.
package printer

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort        = 9100
	defaultDialTimeout = 30 * time.Second

	esc = 0x1B
	gs  = 0x1D
)

// Config describes where the command stream goes.
type Config struct {
	Type    string // "file" or "network"
	Host    string
	Port    int
	Path    string
	Timeout time.Duration
}

// Sink accepts a rendered command stream. Close releases the underlying
// file or connection.
type Sink = io.WriteCloser

// Open connects the configured transport.
func Open(cfg Config) (Sink, error) {
	switch cfg.Type {
	case "file":
		return openFile(cfg.Path)
	case "network":
		return openNetwork(cfg)
	default:
		return nil, fmt.Errorf("printer: unsupported transport %q", cfg.Type)
	}
}

func openFile(path string) (Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("printer: file transport needs a path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("printer: create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("printer: open %s: %w", path, err)
	}
	return f, nil
}

func openNetwork(cfg Config) (Sink, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("printer: network transport needs a host")
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("printer: dial %s: %w", addr, err)
	}
	return conn, nil
}

// TestPage writes a short self-test so a freshly wired printer can be
// checked without running the whole pipeline. charBudget is the line
// width in characters; 58mm paper fits 32.
func TestPage(w io.Writer, charBudget int) error {
	if charBudget <= 0 {
		charBudget = 32
	}
	var buf bytes.Buffer
	buf.Write([]byte{esc, '@', esc, 'a', 1})
	buf.Write([]byte{gs, '!', 0x11})
	buf.WriteString("THERMAL PRINTER TEST\n\n")
	buf.Write([]byte{gs, '!', 0x00})
	buf.WriteString("This is a test print\n")
	buf.WriteString("to verify the printer\n")
	buf.WriteString("is working correctly.\n\n")
	buf.WriteString(strings.Repeat("=", charBudget) + "\n")
	buf.WriteString("Printer: OK\n")
	buf.WriteString("Connection: OK\n")
	buf.WriteString("ESC/POS: OK\n\n")
	buf.WriteString("Ready for daily briefs!\n")
	buf.Write([]byte{'\n', '\n', gs, 'V', 'B', 0})
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("printer: write test page: %w", err)
	}
	return nil
}
