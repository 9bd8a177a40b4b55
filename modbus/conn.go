package modbus

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// defaultPort is the registered Modbus TCP port.
const defaultPort = "502"

// frameConn carries whole MBAP frames over some underlying transport.
type frameConn interface {
	// WriteFrame sends one complete ADU.
	WriteFrame(adu []byte) error

	// ReadFrame receives the next complete frame.
	ReadFrame() (mbapFrame, error)

	// SetDeadline bounds both reads and writes.
	SetDeadline(t time.Time) error

	Close() error
}

// dialFunc opens a frame transport to the configured endpoint.
type dialFunc func(ctx context.Context) (frameConn, error)

// newDialer parses an endpoint URL and returns the matching transport
// dialer. Supported schemes: tcp (default, bare "host:port" accepted), ws
// and wss for MBAP-over-WebSocket gateways.
func newDialer(endpoint string) (dialFunc, error) {
	scheme := "tcp"
	rest := endpoint
	if i := strings.Index(endpoint, "://"); i >= 0 {
		scheme = endpoint[:i]
		rest = endpoint[i+3:]
	}

	switch scheme {
	case "tcp":
		host := rest
		if _, _, err := net.SplitHostPort(host); err != nil {
			host = net.JoinHostPort(host, defaultPort)
		}
		return func(ctx context.Context) (frameConn, error) {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", host)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to %s: %w", host, err)
			}
			return &tcpFrameConn{conn: conn}, nil
		}, nil

	case "ws", "wss":
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid websocket endpoint %q: %w", endpoint, err)
		}
		return func(ctx context.Context) (frameConn, error) {
			conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}
			if err != nil {
				return nil, fmt.Errorf("failed to connect to gateway %s: %w", u, err)
			}
			return &wsFrameConn{conn: conn}, nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q (expected tcp, ws, or wss)", scheme)
	}
}

// tcpFrameConn frames MBAP over a plain TCP stream.
type tcpFrameConn struct {
	conn net.Conn
}

func (c *tcpFrameConn) WriteFrame(adu []byte) error {
	_, err := c.conn.Write(adu)
	return err
}

func (c *tcpFrameConn) ReadFrame() (mbapFrame, error) {
	return readMBAP(c.conn)
}

func (c *tcpFrameConn) SetDeadline(t time.Time) error {
	return c.conn.SetDeadline(t)
}

func (c *tcpFrameConn) Close() error {
	return c.conn.Close()
}

// wsFrameConn frames MBAP over a WebSocket gateway, one ADU per binary
// message.
type wsFrameConn struct {
	conn *websocket.Conn
}

func (c *wsFrameConn) WriteFrame(adu []byte) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, adu)
}

func (c *wsFrameConn) ReadFrame() (mbapFrame, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return mbapFrame{}, err
		}
		// Gateways may interleave text keepalives; only binary messages
		// carry frames.
		if messageType != websocket.BinaryMessage {
			continue
		}
		return parseMBAP(data)
	}
}

func (c *wsFrameConn) SetDeadline(t time.Time) error {
	if err := c.conn.SetReadDeadline(t); err != nil {
		return err
	}
	return c.conn.SetWriteDeadline(t)
}

func (c *wsFrameConn) Close() error {
	return c.conn.Close()
}
