package zeromq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/movingheads/pkg/config"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// Common errors
var (
	ErrServiceClosed      = errors.New("zeromq service is closed")
	ErrInvalidMessage     = errors.New("invalid message format")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Message types
const (
	MsgTypeSnapshotRequest  = "SNAPSHOT_REQUEST"
	MsgTypeSnapshotResponse = "SNAPSHOT_RESPONSE"
	MsgTypeDiagnostics      = "DIAGNOSTICS"
	MsgTypeVelocitySample   = "VELOCITY_SAMPLE"
	MsgTypeError            = "ERROR"
)

// Topics published on the PUB socket and consumed on the SUB socket
const (
	TopicFrame       = "movingheads.frame"
	TopicDiagnostics = "movingheads.diagnostics"
	TopicSample      = "movingheads.sample"
)

// pollInterval bounds how long a loop takes to notice it was stopped.
const pollInterval = 100 * time.Millisecond

// ZeroMQMessage represents a generic message structure for ZeroMQ communication
type ZeroMQMessage struct {
	Type      string      `json:"type"`
	Timestamp float64     `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an error response message
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// MessageHandler defines the interface for handlers that process specific message types
type MessageHandler interface {
	HandleMessage(data []byte) ([]byte, error)
}

// HandlerFunc is a function type that implements MessageHandler
type HandlerFunc func(data []byte) ([]byte, error)

// HandleMessage calls the function
func (f HandlerFunc) HandleMessage(data []byte) ([]byte, error) {
	return f(data)
}

func newMessage(messageType string, data interface{}) ZeroMQMessage {
	return ZeroMQMessage{
		Type:      messageType,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Data:      data,
	}
}

// MessageReceiver answers requests on a REP socket. The socket is owned by
// the receive goroutine and closed by it on exit.
type MessageReceiver struct {
	socket     *zmq4.Socket
	endpoint   string
	dispatcher *MessageDispatcher
	poller     *zmq4.Poller
	logger     customlog.Logger
	started    atomic.Bool
	running    atomic.Bool
	wg         *sync.WaitGroup
}

// newMessageReceiver creates a new MessageReceiver
func newMessageReceiver(ctx *zmq4.Context, address string, dispatcher *MessageDispatcher, logger customlog.Logger, wg *sync.WaitGroup) (*MessageReceiver, error) {
	socket, err := ctx.NewSocket(zmq4.REP)
	if err != nil {
		return nil, fmt.Errorf("failed to create REP socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	// Send timeout keeps a vanished client from blocking shutdown
	if err := socket.SetSndtimeo(time.Second); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set send timeout: %w", err)
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}
	endpoint, err := socket.GetLastEndpoint()
	if err != nil {
		endpoint = address
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	logger.Infof("MessageReceiver initialized on %s", endpoint)

	return &MessageReceiver{
		socket:     socket,
		endpoint:   endpoint,
		dispatcher: dispatcher,
		poller:     poller,
		logger:     logger,
		wg:         wg,
	}, nil
}

// Start begins the message receiving loop
func (r *MessageReceiver) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	r.running.Store(true)
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer r.socket.Close()
		r.logger.Infof("MessageReceiver started")

		for r.running.Load() {
			sockets, err := r.poller.Poll(pollInterval)
			if err != nil {
				if r.running.Load() {
					r.logger.Errorf("Error polling socket: %v", err)
				}
				continue
			}
			if len(sockets) == 0 {
				continue
			}

			msg, err := r.socket.RecvBytes(0)
			if err != nil {
				r.logger.Errorf("Error receiving message: %v", err)
				continue
			}
			r.logger.Debugf("Received message (%d bytes)", len(msg))

			response, err := r.dispatcher.Dispatch(msg)
			if err != nil {
				r.logger.Warnf("Error dispatching message: %v", err)

				code := 500
				if errors.Is(err, ErrUnknownMessageType) || errors.Is(err, ErrInvalidMessage) {
					code = 400
				}
				response, _ = json.Marshal(newMessage(MsgTypeError, ErrorResponse{
					Message: err.Error(),
					Code:    code,
				}))
			}

			// REP must answer every request before it can receive the next one
			if _, err := r.socket.SendBytes(response, 0); err != nil {
				r.logger.Errorf("Error sending response: %v", err)
			}
		}
		r.logger.Infof("MessageReceiver stopped")
	}()
}

// Stop halts the message receiving loop. The goroutine notices within one
// poll interval.
func (r *MessageReceiver) Stop() {
	r.running.Store(false)
}

// MessageSender handles sending messages to ZeroMQ sockets
type MessageSender struct {
	socket   *zmq4.Socket
	endpoint string
	logger   customlog.Logger
	running  bool
	mu       sync.Mutex
}

// newMessageSender creates a new MessageSender
func newMessageSender(ctx *zmq4.Context, address string, logger customlog.Logger) (*MessageSender, error) {
	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}
	endpoint, err := socket.GetLastEndpoint()
	if err != nil {
		endpoint = address
	}

	logger.Infof("MessageSender initialized on %s", endpoint)

	return &MessageSender{
		socket:   socket,
		endpoint: endpoint,
		logger:   logger,
		running:  true,
	}, nil
}

// PublishMessage sends a message with the given topic
func (s *MessageSender) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServiceClosed
	}

	// Topic frame first so subscribers can filter on it
	if _, err := s.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := s.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close cleans up resources
func (s *MessageSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}

// MessageDispatcher routes messages to the appropriate handlers
type MessageDispatcher struct {
	handlers map[string]MessageHandler
	logger   customlog.Logger
	mu       sync.RWMutex
}

// NewMessageDispatcher creates a new message dispatcher
func NewMessageDispatcher(logger customlog.Logger) *MessageDispatcher {
	return &MessageDispatcher{
		handlers: make(map[string]MessageHandler),
		logger:   logger,
	}
}

// RegisterHandler adds a handler for a specific message type
func (d *MessageDispatcher) RegisterHandler(messageType string, handler MessageHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[messageType] = handler
	d.logger.Infof("Registered handler for message type: %s", messageType)
}

// Dispatch parses a JSON request and routes it to the handler of its type
func (d *MessageDispatcher) Dispatch(data []byte) ([]byte, error) {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	d.logger.Debugf("Dispatching JSON message of type: %s", msg.Type)
	d.mu.RLock()
	handler, exists := d.handlers[msg.Type]
	d.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}
	return handler.HandleMessage(data)
}

// ZeroMQService coordinates the REP, PUB and optional SUB sockets
type ZeroMQService struct {
	config     config.ZeroMQBootstrap
	ctx        *zmq4.Context
	receiver   *MessageReceiver
	sender     *MessageSender
	listener   *SampleListener
	dispatcher *MessageDispatcher
	logger     customlog.Logger
	running    bool
	mu         sync.Mutex
	wg         sync.WaitGroup
}

// NewZeroMQService creates the sockets described by cfg. samples receives
// velocity samples when cfg.SampleConnectAddress is set; it may be nil
// otherwise.
func NewZeroMQService(cfg config.ZeroMQBootstrap, samples SampleWriter, logger customlog.Logger) (*ZeroMQService, error) {
	logger = logger.WithField("component", "zeromq")

	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	s := &ZeroMQService{
		config:     cfg,
		ctx:        ctx,
		dispatcher: NewMessageDispatcher(logger),
		logger:     logger,
	}

	s.receiver, err = newMessageReceiver(ctx, cfg.RequestBindAddress, s.dispatcher, logger, &s.wg)
	if err != nil {
		ctx.Term()
		return nil, err
	}

	s.sender, err = newMessageSender(ctx, cfg.PublishBindAddress, logger)
	if err != nil {
		s.receiver.socket.Close()
		ctx.Term()
		return nil, err
	}

	if cfg.SampleConnectAddress != "" && samples != nil {
		s.listener, err = newSampleListener(ctx, cfg.SampleConnectAddress, samples, logger, &s.wg)
		if err != nil {
			s.receiver.socket.Close()
			s.sender.Close()
			ctx.Term()
			return nil, err
		}
	}

	return s, nil
}

// RegisterHandler adds a handler for a specific message type
func (s *ZeroMQService) RegisterHandler(messageType string, handler MessageHandler) {
	s.dispatcher.RegisterHandler(messageType, handler)
}

// RegisterHandlerFunc adds a handler function for a specific message type
func (s *ZeroMQService) RegisterHandlerFunc(messageType string, handler func([]byte) ([]byte, error)) {
	s.dispatcher.RegisterHandler(messageType, HandlerFunc(handler))
}

// Start begins the ZeroMQ service
func (s *ZeroMQService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.running = true
	s.logger.Infof("Starting ZeroMQ service")

	s.receiver.Start()
	if s.listener != nil {
		s.listener.Start()
	}
	return nil
}

// Stop halts the ZeroMQ service and terminates its context
func (s *ZeroMQService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return
	}

	s.logger.Infof("Stopping ZeroMQ service")
	s.running = false

	s.receiver.Stop()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.sender.Close()

	s.wg.Wait()

	// Loops that never started still own open sockets
	if !s.receiver.started.Load() {
		s.receiver.socket.Close()
	}
	if s.listener != nil && !s.listener.started.Load() {
		s.listener.socket.Close()
	}

	s.ctx.Term()
	s.ctx = nil
	s.logger.Infof("ZeroMQ service stopped")
}

// RequestEndpoint returns the resolved REP endpoint
func (s *ZeroMQService) RequestEndpoint() string {
	return s.receiver.endpoint
}

// PublishEndpoint returns the resolved PUB endpoint
func (s *ZeroMQService) PublishEndpoint() string {
	return s.sender.endpoint
}

// PublishMessage sends a message with the given topic
func (s *ZeroMQService) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return ErrServiceClosed
	}
	return s.sender.PublishMessage(topic, message)
}

// PublishJSON publishes a JSON-serializable message with the given topic
func (s *ZeroMQService) PublishJSON(topic string, messageType string, data interface{}) error {
	msgData, err := json.Marshal(newMessage(messageType, data))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return s.PublishMessage(topic, msgData)
}
