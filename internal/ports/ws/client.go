// Package ws connects an agent to the game server over a websocket. Every
// frame is an op code varint followed by the codec envelope.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"hexbot/internal/codec"
	"hexbot/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 65536
)

var ErrClosed = errors.New("connection closed")

// Queue is where decoded server messages go.
type Queue interface {
	Put(ctx context.Context, msg domain.Message) error
}

// Client is one seat's connection. Send is safe for concurrent use; ReadLoop
// must run on a single goroutine.
type Client struct {
	conn   *websocket.Conn
	seat   int
	logger runtime.Logger

	writeMu sync.Mutex
	closed  bool
}

// Dial connects to url presenting token as a bearer credential.
func Dial(ctx context.Context, url, token string, seat int, logger runtime.Logger) (*Client, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to dial %s (status %d): %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewClient(conn, seat, logger), nil
}

// NewClient wraps an established connection.
func NewClient(conn *websocket.Conn, seat int, logger runtime.Logger) *Client {
	return &Client{conn: conn, seat: seat, logger: logger}
}

// Send writes one request frame.
func (c *Client) Send(ctx context.Context, req domain.Request) error {
	op, data, err := codec.EncodeRequest(c.seat, req)
	if err != nil {
		return err
	}
	return c.write(websocket.BinaryMessage, codec.Frame(op, data))
}

func (c *Client) write(kind int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(kind, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReadLoop decodes frames into q until the connection drops or ctx ends.
// Messages addressed to another seat are skipped; undecodable frames are
// logged and dropped.
func (c *Client) ReadLoop(ctx context.Context, q Queue) error {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Unblock ReadMessage when ctx ends.
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		kind, frame, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Info("Client.ReadLoop: server closed the connection")
				return ErrClosed
			}
			return fmt.Errorf("failed to read frame: %w", err)
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		op, data, err := codec.Unframe(frame)
		if err != nil {
			c.logger.Warn("Client.ReadLoop: dropping frame: %v", err)
			continue
		}
		to, msg, err := codec.DecodeMessage(op, data)
		if err != nil {
			c.logger.Warn("Client.ReadLoop: dropping op %d: %v", op, err)
			continue
		}
		if to != domain.NoSeat && to != c.seat {
			continue
		}
		if err := q.Put(ctx, msg); err != nil {
			return nil
		}
	}
}

// KeepAlive pings the server until ctx ends or a write fails.
func (c *Client) KeepAlive(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

// Close sends a close frame and drops the connection. It is idempotent.
func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
