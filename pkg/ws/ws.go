// Package ws upgrades dispatched requests to WebSocket connections.
//
// The upgrade is a chain step: earlier steps run normally (auth, logging,
// state), and the step built by Step takes over the connection, so the
// dispatcher writes nothing afterwards.
package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/trellis-web/trellis/pkg/chain"
)

// Config tunes the WebSocket upgrade and connection.
// Zero fields keep gorilla's defaults.
type Config struct {
	// ReadBufferSize and WriteBufferSize size the connection's I/O
	// buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header. Nil keeps gorilla's
	// same-origin default.
	CheckOrigin func(r *http.Request) bool

	// ReadLimit caps the size of an incoming message, in bytes.
	// Zero means no limit.
	ReadLimit int64

	// PingInterval enables server pings at the given interval. The peer
	// then has PongWait to answer before the read side times out.
	// Zero disables keepalive.
	PingInterval time.Duration

	// PongWait is the read deadline extension granted per pong.
	// Default: twice PingInterval.
	PongWait time.Duration
}

// Handler receives the upgraded connection. The exchange still carries the
// request's params, transient state, and global state. The connection is
// closed when the handler returns.
type Handler[G any, T chain.State[T]] func(ctx context.Context, ex *chain.Exchange[G, T], conn *websocket.Conn) error

// Step builds a chain step that upgrades the request and runs handler on
// the connection. A nil config uses defaults.
//
// The step hijacks the exchange, so it should be the last step of its
// chain; a response set by a later step would be discarded.
func Step[G any, T chain.State[T]](handler Handler[G, T], config *Config) chain.Func[G, T] {
	if config == nil {
		config = &Config{}
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}

	pongWait := config.PongWait
	if pongWait == 0 {
		pongWait = 2 * config.PingInterval
	}

	return func(ctx context.Context, ex *chain.Exchange[G, T]) error {
		// Upgrade writes its own HTTP error on failure, which is why the
		// hijack happens before the attempt.
		conn, err := upgrader.Upgrade(ex.Hijack(), ex.Req, nil)
		if err != nil {
			ex.Log.Error("websocket upgrade failed", "path", ex.Req.URL.Path, "error", err)
			return err
		}
		defer conn.Close()

		if config.ReadLimit > 0 {
			conn.SetReadLimit(config.ReadLimit)
		}

		if config.PingInterval > 0 {
			stop := keepalive(conn, config.PingInterval, pongWait)
			defer stop()
		}

		return handler(ctx, ex, conn)
	}
}

// keepalive pings the peer on a ticker and extends the read deadline on
// each pong. The returned func stops the loop.
func keepalive(conn *websocket.Conn, interval, wait time.Duration) func() {
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

// IsExpectedClose reports whether err is a close the server should treat
// as a normal end of conversation rather than a failure.
func IsExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}
