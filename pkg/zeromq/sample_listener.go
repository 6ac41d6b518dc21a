package zeromq

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/geo/r3"
	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// SampleWriter stores the latest remote velocity sample.
type SampleWriter interface {
	Set(sample r3.Vector)
}

// VelocitySample is the payload of a VELOCITY_SAMPLE message. Axes are
// normalized to [-1, 1].
type VelocitySample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type velocityMessage struct {
	Type string         `json:"type"`
	Data VelocitySample `json:"data"`
}

// SampleListener subscribes to velocity samples published by a remote
// gateway and feeds them into a SampleWriter.
type SampleListener struct {
	socket  *zmq4.Socket
	poller  *zmq4.Poller
	samples SampleWriter
	logger  customlog.Logger
	started atomic.Bool
	running atomic.Bool
	wg      *sync.WaitGroup
}

func newSampleListener(ctx *zmq4.Context, address string, samples SampleWriter, logger customlog.Logger, wg *sync.WaitGroup) (*SampleListener, error) {
	socket, err := ctx.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetSubscribe(TopicSample); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", TopicSample, err)
	}
	if err := socket.Connect(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	logger.Infof("Sample listener connected to %s", address)

	return &SampleListener{
		socket:  socket,
		poller:  poller,
		samples: samples,
		logger:  logger,
		wg:      wg,
	}, nil
}

// Start begins listening for samples
func (l *SampleListener) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	l.running.Store(true)
	l.wg.Add(1)
	go l.receiveLoop()
}

// Stop stops the listener within one poll interval
func (l *SampleListener) Stop() {
	l.running.Store(false)
}

// receiveLoop continuously receives and applies samples
func (l *SampleListener) receiveLoop() {
	defer l.wg.Done()
	defer l.socket.Close()

	for l.running.Load() {
		sockets, err := l.poller.Poll(pollInterval)
		if err != nil || len(sockets) == 0 {
			continue
		}

		parts, err := l.socket.RecvMessageBytes(0)
		if err != nil {
			l.logger.Errorf("Error receiving sample: %v", err)
			continue
		}
		if len(parts) != 2 {
			l.logger.Warnf("Dropping sample with %d frames, want topic and payload", len(parts))
			continue
		}

		sample, err := decodeSample(parts[1])
		if err != nil {
			l.logger.Warnf("Dropping sample: %v", err)
			continue
		}
		l.samples.Set(sample)
	}
}

func decodeSample(data []byte) (r3.Vector, error) {
	var msg velocityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return r3.Vector{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type != MsgTypeVelocitySample {
		return r3.Vector{}, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}
	return r3.Vector{X: msg.Data.X, Y: msg.Data.Y, Z: msg.Data.Z}, nil
}
