package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/engine"
	"github.com/opd-ai/go-maritime/pkg/entity"
	"github.com/opd-ai/go-maritime/pkg/env"
	"github.com/opd-ai/go-maritime/pkg/event"
	"github.com/opd-ai/go-maritime/pkg/health"
	"github.com/opd-ai/go-maritime/pkg/logging"
	"github.com/opd-ai/go-maritime/pkg/resource"
	"github.com/opd-ai/go-maritime/pkg/validation"
)

// EnvPath is where the websocket endpoint is mounted.
const EnvPath = "/env"

// readLimitFactor lets frames somewhat over the message size limit through
// to validation, which answers them with an error instead of dropping the
// connection.
const readLimitFactor = 4

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var errBadRequest = errors.New("bad request")

// EnvServer hosts one environment per websocket connection.
type EnvServer struct {
	cfg       *config.SimConfig
	logger    *logging.Logger
	bus       *event.Bus
	resources *resource.ResourceManager
	validator *validation.MessageValidator
	health    *health.HealthChecker

	mu       sync.RWMutex
	sessions map[string]*session
	listener net.Listener
	httpSrv  *http.Server
	closed   bool
}

// ServerOption configures an EnvServer.
type ServerOption func(*EnvServer)

// WithServerLogger sets the server logger.
func WithServerLogger(l *logging.Logger) ServerOption {
	return func(s *EnvServer) { s.logger = l }
}

// WithServerEventBus publishes session and episode events on bus.
func WithServerEventBus(bus *event.Bus) ServerOption {
	return func(s *EnvServer) { s.bus = bus }
}

// NewEnvServer validates cfg and prepares a server. Each session starts
// from a copy of cfg.
func NewEnvServer(cfg *config.SimConfig, opts ...ServerOption) (*EnvServer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &EnvServer{
		cfg:      cfg.Clone(),
		logger:   logging.NewNopLogger(),
		bus:      event.NewEventBus(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resources = resource.NewResourceManager(&s.cfg.Server, s.logger)
	s.validator = validation.NewMessageValidator(s.cfg.Server.MaxMessageBytes, s.cfg.Server.StepsPerSecond)

	s.health = health.NewHealthChecker()
	s.health.AddCheck(health.NewSessionHealthCheck(func() (int, int) {
		return s.ActiveSessions(), s.cfg.Server.MaxSessions
	}))
	s.health.AddCheck(resource.NewResourceHealthCheck(s.resources))
	return s, nil
}

// Handler returns the server's HTTP routes: the websocket endpoint, the
// health probes and /stats.
func (s *EnvServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(EnvPath, s.handleEnv)
	mux.HandleFunc("/stats", s.handleStats)
	s.health.Register(mux)
	return mux
}

// Health returns the checker behind /readyz so callers can add checks.
func (s *EnvServer) Health() *health.HealthChecker {
	return s.health
}

// EventBus returns the bus sessions publish on.
func (s *EnvServer) EventBus() *event.Bus {
	return s.bus
}

// Start listens on the configured address and serves in the background.
func (s *EnvServer) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	if err := s.resources.Start(); err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout.Std(),
	}
	s.mu.Lock()
	s.listener = ln
	s.httpSrv = srv
	s.mu.Unlock()

	s.health.AddCheck(health.NewListenerHealthCheck(s.Addr))

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "environment server stopped", err)
		}
	}()
	s.logger.Info(context.Background(), "environment server started",
		"address", ln.Addr().String(),
		"max_sessions", s.cfg.Server.MaxSessions)
	return nil
}

// Addr returns the bound address, or "" before Start and after Shutdown.
func (s *EnvServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil || s.closed {
		return ""
	}
	return s.listener.Addr().String()
}

// ActiveSessions returns the number of open sessions.
func (s *EnvServer) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown stops accepting connections, closes every session and waits
// for session goroutines up to the configured shutdown timeout.
func (s *EnvServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.httpSrv
	s.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.resources.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.validator.Close()
	s.logger.Info(ctx, "environment server stopped")
	return errors.Join(errs...)
}

func (s *EnvServer) handleEnv(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	closed, full := s.closed, len(s.sessions) >= s.cfg.Server.MaxSessions
	s.mu.RUnlock()
	switch {
	case closed:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	case full:
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	sess := s.newSession(conn, r.RemoteAddr)
	if err := s.register(sess); err != nil {
		sess.reject(err)
		return
	}
	if err := s.resources.Go(context.Background(), "session", sess.run); err != nil {
		s.unregister(sess)
		sess.reject(err)
		return
	}
	s.bus.Publish(event.NewSessionEvent(event.SessionOpened, s, sess.id, sess.remote))
}

func (s *EnvServer) register(sess *session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resource.ErrShuttingDown
	}
	if len(s.sessions) >= s.cfg.Server.MaxSessions {
		return fmt.Errorf("session limit %d reached", s.cfg.Server.MaxSessions)
	}
	s.sessions[sess.id] = sess
	return nil
}

func (s *EnvServer) unregister(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.validator.Forget(sess.id)
}

// Stats is the body served at /stats.
type Stats struct {
	Sessions    int                    `json:"sessions"`
	MaxSessions int                    `json:"max_sessions"`
	Resources   resource.ResourceStats `json:"resources"`
	Health      health.HealthStatus    `json:"health"`
}

func (s *EnvServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		Sessions:    s.ActiveSessions(),
		MaxSessions: s.cfg.Server.MaxSessions,
		Resources:   s.resources.Stats(),
		Health:      s.health.CheckHealth(r.Context()),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// session is one connection and the environment it drives. Only its run
// goroutine touches env and writes to conn.
type session struct {
	id     string
	remote string
	conn   *websocket.Conn
	server *EnvServer
	logger *logging.Logger
	ctx    context.Context
	env    *env.Env
}

func (s *EnvServer) newSession(conn *websocket.Conn, remote string) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		remote: remote,
		conn:   conn,
		server: s,
		logger: s.logger.With("session_id", id),
		ctx:    logging.WithCorrelationID(context.Background(), id),
	}
}

// reject answers a connection that will not get a session and closes it.
func (ss *session) reject(err error) {
	ss.logger.Warn(ss.ctx, "session rejected", "error", err, "remote_addr", ss.remote)
	ss.reply(MsgError, 0, ErrorPayload{Code: CodeServerFull, Message: err.Error()})
	ss.conn.Close()
}

func (ss *session) run(ctx context.Context) {
	defer ss.finish()
	go func() {
		<-ctx.Done()
		ss.conn.Close()
	}()

	srv := ss.server.cfg.Server
	ss.conn.SetReadLimit(int64(srv.MaxMessageBytes * readLimitFactor))
	ss.logger.Info(ss.ctx, "session opened", "remote_addr", ss.remote)

	for {
		ss.conn.SetReadDeadline(time.Now().Add(srv.ReadTimeout.Std()))
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				ss.logger.Debug(ss.ctx, "session read ended", "error", err)
			}
			return
		}
		if !ss.handle(data) {
			return
		}
	}
}

func (ss *session) finish() {
	if ss.env != nil {
		ss.env.Close()
		ss.env = nil
	}
	ss.conn.Close()
	ss.server.unregister(ss)
	ss.server.bus.Publish(event.NewSessionEvent(event.SessionClosed, ss.server, ss.id, ss.remote))
	ss.logger.Info(ss.ctx, "session closed")
}

// handle serves one frame and reports whether the session continues.
func (ss *session) handle(data []byte) bool {
	var req Envelope
	parseErr := json.Unmarshal(data, &req)
	if err := ss.server.validator.ValidateMessage(data, ss.id); err != nil {
		return ss.replyError(req.ID, err)
	}
	if parseErr != nil {
		return ss.replyError(req.ID, fmt.Errorf("%w: %v", errBadRequest, parseErr))
	}

	var (
		respType MessageType
		payload  interface{}
		err      error
	)
	switch req.Type {
	case MsgMake:
		respType, payload, err = ss.handleMake(req)
	case MsgReset:
		respType, payload, err = ss.handleReset()
	case MsgStep:
		respType, payload, err = ss.handleStep(req)
	case MsgSpaces:
		respType, payload, err = ss.handleSpaces()
	case MsgClose:
		if ss.env != nil {
			ss.env.Close()
			ss.env = nil
		}
		ss.reply(MsgClosed, req.ID, nil)
		return false
	default:
		return ss.reply(MsgError, req.ID, ErrorPayload{
			Code:    CodeUnknownType,
			Message: fmt.Sprintf("unknown message type %q", req.Type),
		})
	}
	if err != nil {
		return ss.replyError(req.ID, err)
	}
	return ss.reply(respType, req.ID, payload)
}

func (ss *session) handleMake(req Envelope) (MessageType, interface{}, error) {
	var mr MakeRequest
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &mr); err != nil {
			return "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}

	cfg := ss.server.cfg.Clone()
	if mr.Seed != nil {
		cfg.Seed = mr.Seed
	}
	if mr.CollisionModel != "" {
		model, err := entity.ParseCollisionModel(mr.CollisionModel)
		if err != nil {
			return "", nil, &config.Error{Option: "collision_model", Reason: err.Error()}
		}
		cfg.CollisionModel = model
	}
	if len(mr.Rewards) > 0 {
		if err := validation.ValidateRewardOptions(mr.Rewards); err != nil {
			return "", nil, &config.Error{Option: "rewards", Reason: err.Error()}
		}
		rewards, err := env.RewardsFromOptions(mr.Rewards)
		if err != nil {
			return "", nil, err
		}
		cfg.Rewards = rewards
	}

	e, err := env.New(cfg, env.WithLogger(ss.logger), env.WithEventBus(ss.server.bus))
	if err != nil {
		return "", nil, err
	}
	if ss.env != nil {
		ss.env.Close()
	}
	ss.env = e
	ss.logger.Info(ss.ctx, "environment created", "seed", e.Seed(), "collision_model", cfg.CollisionModel.String())
	return MsgSpaces, ss.spaces(), nil
}

func (ss *session) handleReset() (MessageType, interface{}, error) {
	if ss.env == nil {
		return "", nil, fmt.Errorf("%w: reset before make", env.ErrInvalidState)
	}
	obs, err := ss.env.Reset()
	if err != nil {
		return "", nil, err
	}
	return MsgObservation, ResetResult{Observation: obs, EpisodeID: ss.env.EpisodeID()}, nil
}

func (ss *session) handleStep(req Envelope) (MessageType, interface{}, error) {
	if ss.env == nil {
		return "", nil, fmt.Errorf("%w: step before make", env.ErrInvalidState)
	}
	var sr StepRequest
	if err := decodePayload(req, &sr); err != nil {
		return "", nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := validation.ValidateAction(sr.Action, ss.env.ActionSpace()); err != nil {
		return "", nil, err
	}
	result, err := ss.env.Step(sr.Action)
	if err != nil {
		return "", nil, err
	}
	return MsgStepResult, result, nil
}

func (ss *session) handleSpaces() (MessageType, interface{}, error) {
	if ss.env == nil {
		return "", nil, fmt.Errorf("%w: spaces before make", env.ErrInvalidState)
	}
	return MsgSpaces, ss.spaces(), nil
}

func (ss *session) spaces() Spaces {
	return Spaces{
		Action:      ss.env.ActionSpace(),
		Observation: ss.env.ObservationSpace(),
		Seed:        ss.env.Seed(),
	}
}

func (ss *session) replyError(id uint64, err error) bool {
	p := errorPayload(err)
	if p.Code == CodeInternal {
		ss.logger.Error(ss.ctx, "request failed", err)
	}
	return ss.reply(MsgError, id, p)
}

// reply writes one frame and reports whether the write succeeded.
func (ss *session) reply(t MessageType, id uint64, payload interface{}) bool {
	msg, err := newEnvelope(t, id, payload)
	if err != nil {
		ss.logger.Error(ss.ctx, "encode reply failed", err)
		msg = Envelope{Type: MsgError, ID: id}
		msg.Payload, _ = json.Marshal(ErrorPayload{Code: CodeInternal, Message: "encode reply failed"})
	}
	ss.conn.SetWriteDeadline(time.Now().Add(ss.server.cfg.Server.WriteTimeout.Std()))
	if err := ss.conn.WriteJSON(msg); err != nil {
		ss.logger.Debug(ss.ctx, "write failed", "error", err)
		return false
	}
	return true
}

func errorPayload(err error) ErrorPayload {
	code := CodeInternal
	switch {
	case errors.Is(err, validation.ErrMessageTooLarge):
		code = CodeMessageTooLarge
	case errors.Is(err, validation.ErrRateLimited):
		code = CodeRateLimited
	case errors.Is(err, validation.ErrMalformed), errors.Is(err, errBadRequest):
		code = CodeBadRequest
	case errors.Is(err, env.ErrInvalidState):
		code = CodeInvalidState
	case errors.Is(err, env.ErrInvalidAction):
		code = CodeInvalidAction
	case errors.Is(err, config.ErrInvalidConfig):
		code = CodeInvalidConfig
	case errors.Is(err, engine.ErrGeneration):
		code = CodeGenerationFailed
	}
	return ErrorPayload{Code: code, Message: err.Error()}
}
