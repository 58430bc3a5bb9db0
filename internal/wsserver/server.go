package wsserver

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leslieo2/go-hot-reload/internal/config"
	"github.com/leslieo2/go-hot-reload/internal/constants"
	"github.com/leslieo2/go-hot-reload/internal/observability"
)

// State is the server lifecycle state.
type State int32

const (
	StateNotStarted State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateError:
		return "error"
	}
	return "unknown"
}

var (
	ErrBind           = errors.New("failed to bind websocket listener")
	ErrServerFull     = errors.New("connection limit reached")
	ErrClientNotFound = errors.New("client not found")
	ErrSend           = errors.New("failed to send to client")
	ErrNotRunning     = errors.New("websocket server is not running")
)

// Server accepts raw TCP connections, upgrades them per RFC 6455, and pushes
// framed JSON messages to every connected browser.
type Server struct {
	cfg       config.WebSocketConfig
	logger    *observability.Logger
	metrics   *observability.Metrics
	admission *admission

	mu        sync.Mutex
	state     State
	stateErr  error
	clients   map[string]*ClientConnection
	listener  net.Listener

	done chan struct{}
	wg   sync.WaitGroup
}

func NewServer(cfg config.WebSocketConfig, logger *observability.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		admission: newAdmission(cfg.AdmissionRPS, cfg.AdmissionBurst),
		state:     StateNotStarted,
		clients:   make(map[string]*ClientConnection),
	}
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Server) setError(err error) {
	s.mu.Lock()
	s.state = StateError
	s.stateErr = err
	s.mu.Unlock()
}

// Addr returns the bound listen address, useful when the port was 0.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds the listener and launches the accept, heartbeat, and cleanup
// loops. Bind failures are returned synchronously.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.state == StateRunning || s.state == StateStarting {
		s.mu.Unlock()
		return fmt.Errorf("websocket server already running")
	}
	s.state = StateStarting
	s.mu.Unlock()

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.setError(err)
		return fmt.Errorf("%w: %s: %s", ErrBind, addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.state = StateRunning
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(3)
	go s.acceptLoop()
	go s.heartbeatLoop()
	go s.cleanupLoop()

	s.logger.Info("websocket server listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Stop notifies clients, closes every connection and the listener, and joins
// the background loops. Safe to call multiple times.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	listener := s.listener
	done := s.done
	s.mu.Unlock()

	if _, err := s.Broadcast(NewDisconnect()); err != nil {
		s.logger.Debug("disconnect broadcast failed", zap.Error(err))
	}

	close(done)
	if listener != nil {
		_ = listener.Close()
	}

	// Close sockets before joining so blocked read loops wake up.
	s.mu.Lock()
	for id, client := range s.clients {
		client.close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
	s.wg.Wait()

	s.setState(StateStopped)
	s.metrics.ConnectedClients.Set(0)

	s.logger.Info("websocket server stopped")
}

// ClientCount returns the number of registered clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcast serializes the message once and writes it to every registered
// client. A failed write removes that client but never aborts delivery to
// the others. Returns the number of successful deliveries.
func (s *Server) Broadcast(msg Message) (int, error) {
	payload, err := msg.Encode()
	if err != nil {
		return 0, err
	}
	frame := EncodeTextFrame(payload)

	s.mu.Lock()
	clients := make([]*ClientConnection, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	delivered := 0
	for _, client := range clients {
		if err := client.send(frame); err != nil {
			s.metrics.SendFailures.Inc()
			s.logger.Warn("client write failed, dropping client",
				zap.String("client_id", client.ID), zap.Error(err))
			s.removeClient(client.ID)
			continue
		}
		delivered++
	}

	s.metrics.BroadcastsTotal.Inc()
	s.logger.Debug("broadcast",
		zap.String("type", string(msg.Type)),
		zap.Int("delivered", delivered))
	return delivered, nil
}

// SendTo writes one message to a single client.
func (s *Server) SendTo(clientID string, msg Message) error {
	s.mu.Lock()
	client, ok := s.clients[clientID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	payload, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := client.send(EncodeTextFrame(payload)); err != nil {
		s.metrics.SendFailures.Inc()
		s.removeClient(clientID)
		return fmt.Errorf("%w: %s: %s", ErrSend, clientID, err)
	}
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		// Handshake never blocks the accept loop for other connections.
		go s.handleConnection(conn)
	}
}

// handleConnection admits, upgrades, and registers one raw connection. Any
// failure closes just this connection.
func (s *Server) handleConnection(conn net.Conn) {
	ip := remoteIP(conn)
	if !s.admission.allow(ip) {
		s.logger.Warn("connection rejected by admission limiter", zap.String("ip", ip))
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	full := len(s.clients) >= s.cfg.MaxConnections
	s.mu.Unlock()
	if full {
		s.logger.Warn("connection rejected, server full",
			zap.Int("max_connections", s.cfg.MaxConnections))
		writeHandshakeRejection(conn, ErrServerFull.Error())
		_ = conn.Close()
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	reader := bufio.NewReaderSize(conn, constants.MaxHandshakeBytes)
	req, err := readHandshake(reader)
	if err != nil {
		s.logger.Debug("handshake rejected", zap.Error(err))
		writeHandshakeRejection(conn, "bad websocket handshake")
		_ = conn.Close()
		return
	}
	if err := writeHandshakeResponse(conn, ComputeAcceptKey(req.key)); err != nil {
		s.logger.Debug("handshake response failed", zap.Error(err))
		_ = conn.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	client := newClientConnection(uuid.NewString(), conn, req.userAgent)

	// Registration and wg.Add happen under the lock so a concurrent Stop
	// either sees this client in the registry or rejects it here.
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.clients[client.ID] = client
	count := len(s.clients)
	s.wg.Add(1)
	s.mu.Unlock()
	s.metrics.ConnectedClients.Set(float64(count))

	s.logger.Info("client connected",
		zap.String("client_id", client.ID),
		zap.String("ip", ip),
		zap.Int("clients", count))

	if err := s.SendTo(client.ID, NewConnected(client.ID)); err != nil {
		s.logger.Debug("welcome message failed", zap.Error(err))
		s.wg.Done()
		return
	}

	go s.readLoop(client, reader)
}

// readLoop consumes client frames: pings are answered, pongs and data update
// activity, close frames end the loop.
func (s *Server) readLoop(client *ClientConnection, reader *bufio.Reader) {
	defer s.wg.Done()
	defer s.removeClient(client.ID)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		frame, err := DecodeFrame(reader)
		if err != nil {
			s.logger.Debug("client read ended",
				zap.String("client_id", client.ID), zap.Error(err))
			return
		}
		client.touch()

		switch frame.Opcode {
		case constants.OpcodeClose:
			return
		case constants.OpcodePing:
			if err := client.send(EncodePongFrame(frame.Payload)); err != nil {
				return
			}
		case constants.OpcodeText:
			s.handleInbound(client, frame.Payload)
		}
	}
}

func (s *Server) handleInbound(client *ClientConnection, payload []byte) {
	msg, err := decodeInbound(payload)
	if err != nil {
		s.logger.Debug("ignoring malformed client message",
			zap.String("client_id", client.ID), zap.Error(err))
		return
	}

	switch msg.Type {
	case MessagePing:
		if err := s.SendTo(client.ID, NewPong()); err != nil {
			s.logger.Debug("pong failed", zap.Error(err))
		}
	case MessagePong:
		// activity already recorded
	case MessageClientInfo:
		var info ClientInfoData
		if err := unmarshalData(msg.Data, &info); err == nil {
			client.setInfo(info.UserAgent, info.CurrentURL)
		}
	default:
		s.logger.Debug("ignoring client message",
			zap.String("type", string(msg.Type)),
			zap.String("client_id", client.ID))
	}
}

func (s *Server) heartbeatLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := s.Broadcast(NewPing()); err != nil {
				s.logger.Warn("heartbeat broadcast failed", zap.Error(err))
			}
		}
	}
}

func (s *Server) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(constants.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweepIdle(time.Now())
		}
	}
}

// sweepIdle removes and closes clients idle beyond the connection timeout.
func (s *Server) sweepIdle(now time.Time) {
	s.mu.Lock()
	var stale []*ClientConnection
	for _, client := range s.clients {
		if now.Sub(client.LastActivity()) > s.cfg.ConnectionTimeout {
			stale = append(stale, client)
		}
	}
	s.mu.Unlock()

	for _, client := range stale {
		s.logger.Info("evicting idle client",
			zap.String("client_id", client.ID),
			zap.Time("last_activity", client.LastActivity()))
		s.removeClient(client.ID)
	}
}

// removeClient is the single removal path: deregister, close, update gauge.
func (s *Server) removeClient(id string) {
	s.mu.Lock()
	client, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
	}
	count := len(s.clients)
	s.mu.Unlock()

	if !ok {
		return
	}
	client.close()
	s.metrics.ConnectedClients.Set(float64(count))
	s.logger.Debug("client removed", zap.String("client_id", id))
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
