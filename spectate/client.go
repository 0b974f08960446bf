package spectate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConfig holds spectator client configuration.
type ClientConfig struct {
	URL            string // ws://host:port/events
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration // extended by every message and ping
}

// DefaultClientConfig returns sensible defaults for a local hub.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:            "ws://localhost:8090/events",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    pongWait + 5*time.Second,
	}
}

// Watch connects to a hub and calls fn for every event until ctx ends, the
// hub closes the stream (nil error) or fn returns an error.
func Watch(ctx context.Context, cfg ClientConfig, fn func(Event) error) error {
	dialer := websocket.Dialer{HandshakeTimeout: cfg.ConnectTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	conn, _, err := dialer.DialContext(dialCtx, cfg.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.URL, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	extend := func() error { return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout)) }
	conn.SetPingHandler(func(data string) error {
		_ = extend()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		if err := extend(); err != nil {
			return err
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if err := fn(ev); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

// ErrStop may be returned by a Watch callback to end the stream cleanly.
var ErrStop = errors.New("stop watching")
