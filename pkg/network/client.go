package network

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/logging"
)

// ErrClientClosed is returned by calls on a closed EnvClient.
var ErrClientClosed = errors.New("client closed")

// closeReplyTimeout bounds the wait for the server's closed frame.
const closeReplyTimeout = time.Second

// EnvClient drives one remote environment. Calls are serialized; the
// client may be shared between goroutines but the environment still sees
// one sequential caller.
type EnvClient struct {
	conn         *websocket.Conn
	service      *NetworkService
	logger       *logging.Logger
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu        sync.Mutex
	nextID    uint64
	episodeID string
	closed    bool
}

// ClientOption configures Dial.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     *logging.Logger
	attempts   int
	retryDelay time.Duration
}

// WithClientLogger sets the client logger.
func WithClientLogger(l *logging.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// WithRetryPolicy sets how often Dial retries a failed handshake.
func WithRetryPolicy(attempts int, baseDelay time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.attempts = attempts
		o.retryDelay = baseDelay
	}
}

// Dial connects to the environment endpoint at url (ws://host:port/env),
// retrying transport failures. Timeouts and breaker settings come from cfg.
func Dial(ctx context.Context, url string, cfg *config.ServerConfig, opts ...ClientOption) (*EnvClient, error) {
	o := clientOptions{
		logger:     logging.NewNopLogger(),
		attempts:   DefaultRetryAttempts,
		retryDelay: DefaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}

	service := NewNetworkService("maritime-env", cfg, o.logger)
	service.SetRetryPolicy(o.attempts, o.retryDelay)

	var conn *websocket.Conn
	err := service.ExecuteWithRetry(ctx, func() error {
		dialCtx, cancel := context.WithTimeout(ctx, cfg.ReadTimeout.Std())
		defer cancel()
		c, resp, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
		if err != nil {
			if resp != nil {
				return fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
			}
			return fmt.Errorf("dial %s: %w", url, err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info(ctx, "connected to environment server", "url", url)
	return &EnvClient{
		conn:         conn,
		service:      service,
		logger:       o.logger,
		readTimeout:  cfg.ReadTimeout.Std(),
		writeTimeout: cfg.WriteTimeout.Std(),
	}, nil
}

// Make creates the remote environment, replacing any previous one.
func (c *EnvClient) Make(ctx context.Context, req MakeRequest) (Spaces, error) {
	var spaces Spaces
	err := c.call(ctx, MsgMake, req, MsgSpaces, &spaces)
	return spaces, err
}

// Reset starts a new remote episode.
func (c *EnvClient) Reset(ctx context.Context) (env.Observation, error) {
	var res ResetResult
	if err := c.call(ctx, MsgReset, nil, MsgObservation, &res); err != nil {
		return env.Observation{}, err
	}
	c.mu.Lock()
	c.episodeID = res.EpisodeID
	c.mu.Unlock()
	return res.Observation, nil
}

// Step sends one action.
func (c *EnvClient) Step(ctx context.Context, action float64) (env.StepResult, error) {
	var res env.StepResult
	err := c.call(ctx, MsgStep, StepRequest{Action: action}, MsgStepResult, &res)
	return res, err
}

// Spaces fetches the action and observation spaces.
func (c *EnvClient) Spaces(ctx context.Context) (Spaces, error) {
	var spaces Spaces
	err := c.call(ctx, MsgSpaces, nil, MsgSpaces, &spaces)
	return spaces, err
}

// EpisodeID returns the ID of the last episode started by Reset.
func (c *EnvClient) EpisodeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.episodeID
}

// Service exposes the client's circuit breaker.
func (c *EnvClient) Service() *NetworkService {
	return c.service
}

// Close ends the session. It is safe to call more than once.
func (c *EnvClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.nextID++
	req, _ := newEnvelope(MsgClose, c.nextID, nil)
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteJSON(req); err == nil {
		var resp Envelope
		c.conn.SetReadDeadline(time.Now().Add(closeReplyTimeout))
		if err := c.conn.ReadJSON(&resp); err == nil && resp.Type != MsgClosed {
			c.logger.Debug(context.Background(), "unexpected close reply", "type", resp.Type)
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeReplyTimeout))
	return c.conn.Close()
}

func (c *EnvClient) call(ctx context.Context, t MessageType, payload interface{}, want MessageType, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.nextID++
	req, err := newEnvelope(t, c.nextID, payload)
	if err != nil {
		return err
	}
	return c.service.Execute(ctx, func() error {
		return c.roundTrip(ctx, req, want, out)
	})
}

func (c *EnvClient) roundTrip(ctx context.Context, req Envelope, want MessageType, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.conn.SetWriteDeadline(c.deadline(ctx, c.writeTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send %s: %w", req.Type, err)
	}

	var resp Envelope
	c.conn.SetReadDeadline(c.deadline(ctx, c.readTimeout))
	if err := c.conn.ReadJSON(&resp); err != nil {
		return fmt.Errorf("receive %s reply: %w", req.Type, err)
	}
	// Frames the server could not parse are answered with ID 0.
	if resp.ID != req.ID && !(resp.ID == 0 && resp.Type == MsgError) {
		return fmt.Errorf("reply id %d does not match request id %d", resp.ID, req.ID)
	}
	if resp.Type == MsgError {
		var p ErrorPayload
		if err := decodePayload(resp, &p); err != nil {
			return fmt.Errorf("decode error reply: %w", err)
		}
		return &RemoteError{Code: p.Code, Message: p.Message}
	}
	if resp.Type != want {
		return fmt.Errorf("unexpected reply %q to %q", resp.Type, req.Type)
	}
	if out == nil {
		return nil
	}
	if err := decodePayload(resp, out); err != nil {
		return fmt.Errorf("decode %s reply: %w", resp.Type, err)
	}
	return nil
}

// deadline is the earlier of ctx's deadline and now+timeout.
func (c *EnvClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}
