package notify

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const DefaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// gateway opcodes
const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatACK   = 11
)

// Gateway keeps the bot's gateway session online so Discord shows it as
// connected. Messages are still sent over REST.
type Gateway struct {
	Token          string
	URL            string
	Logger         *zap.Logger
	Dialer         *websocket.Dialer
	ReconnectDelay time.Duration

	readyOnce sync.Once
	ready     chan struct{}
}

func NewGateway(logger *zap.Logger, token string) *Gateway {
	return &Gateway{
		Token:          token,
		URL:            DefaultGatewayURL,
		Logger:         logger,
		Dialer:         websocket.DefaultDialer,
		ReconnectDelay: 5 * time.Second,
		ready:          make(chan struct{}),
	}
}

// Ready is closed after the first READY dispatch.
func (g *Gateway) Ready() <-chan struct{} { return g.ready }

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// fatalCloseCodes are close codes after which reconnecting cannot succeed.
var fatalCloseCodes = map[int]string{
	4004: "authentication failed",
	4010: "invalid shard",
	4011: "sharding required",
	4012: "invalid API version",
	4013: "invalid intents",
	4014: "disallowed intents",
}

// Run holds a session open and reconnects after failures until ctx is done.
// It gives up on close codes that a reconnect cannot fix, such as a bad token.
func (g *Gateway) Run(ctx context.Context) error {
	for {
		err := g.session(ctx)
		if ctx.Err() != nil {
			g.Logger.Info("gateway_stopped")
			return ctx.Err()
		}
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			if reason, ok := fatalCloseCodes[ce.Code]; ok {
				g.Logger.Error("gateway_fatal_close",
					zap.Int("code", ce.Code),
					zap.String("reason", reason),
					zap.Error(err),
				)
				return err
			}
		}
		g.Logger.Warn("gateway_session_ended", zap.Error(err), zap.Duration("retry_in", g.ReconnectDelay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.ReconnectDelay):
		}
	}
}

type gatewayConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *gatewayConn) write(op int, d any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	b, err := json.Marshal(gatewayPayload{Op: op, D: raw})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *gatewayConn) read() (gatewayPayload, error) {
	var p gatewayPayload
	_, b, err := c.conn.ReadMessage()
	if err != nil {
		return p, err
	}
	err = json.Unmarshal(b, &p)
	return p, err
}

func (g *Gateway) session(ctx context.Context) error {
	ws, _, err := g.Dialer.DialContext(ctx, g.URL, nil)
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}
	conn := &gatewayConn{conn: ws}

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sctx.Done()
		_ = ws.Close()
	}()

	hello, err := conn.read()
	if err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello, got op %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil || hd.HeartbeatInterval <= 0 {
		return fmt.Errorf("bad hello payload: %s", hello.D)
	}

	if err := conn.write(opIdentify, identifyData{
		Token:   g.Token,
		Intents: 0,
		Properties: identifyProperties{
			OS:      runtime.GOOS,
			Browser: "staffup",
			Device:  "staffup",
		},
	}); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	var seq sequence
	go g.heartbeat(sctx, conn, time.Duration(hd.HeartbeatInterval)*time.Millisecond, &seq)

	for {
		p, err := conn.read()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if p.S != nil {
			seq.set(*p.S)
		}
		switch p.Op {
		case opDispatch:
			if p.T == "READY" {
				g.Logger.Info("gateway_ready")
				g.readyOnce.Do(func() { close(g.ready) })
			}
		case opHeartbeat:
			if err := conn.write(opHeartbeat, seq.get()); err != nil {
				return fmt.Errorf("heartbeat: %w", err)
			}
		case opHeartbeatACK:
			g.Logger.Debug("gateway_heartbeat_ack")
		case opReconnect:
			return errors.New("server requested reconnect")
		case opInvalidSession:
			return errors.New("invalid session")
		}
	}
}

func (g *Gateway) heartbeat(ctx context.Context, conn *gatewayConn, every time.Duration, seq *sequence) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := conn.write(opHeartbeat, seq.get()); err != nil {
				g.Logger.Debug("gateway_heartbeat_error", zap.Error(err))
				return
			}
		}
	}
}

// sequence is the last dispatch sequence number; nil until one arrives.
type sequence struct {
	mu sync.Mutex
	s  *int64
}

func (q *sequence) set(v int64) {
	q.mu.Lock()
	q.s = &v
	q.mu.Unlock()
}

func (q *sequence) get() *int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.s
}
