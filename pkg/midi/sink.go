// Package midi drives fixtures through MIDI Control Change messages.
package midi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/open-teleop/movingheads/domain/targeting"
	"github.com/open-teleop/movingheads/pkg/config"
)

// ccKey addresses one controller on one MIDI channel.
type ccKey struct {
	channel    uint8
	controller uint8
}

// Sink is a targeting.OutputSink that sends every fixture channel as a
// Control Change. Channel ids 0-127 use the base MIDI channel; ids 128-255
// use the next one. A CC is only resent when its value changes.
type Sink struct {
	send        func(msg gomidi.Message) error
	port        drivers.Out
	baseChannel uint8
	last        map[ccKey]uint8
}

var _ targeting.OutputSink = (*Sink)(nil)

// FindOutPort returns the first output port whose name contains substr,
// ignoring case.
func FindOutPort(substr string) (drivers.Out, error) {
	lower := strings.ToLower(substr)
	for _, port := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output port matching %q", substr)
}

// OutPortNames lists the available output ports.
func OutPortNames() []string {
	var names []string
	for _, port := range gomidi.GetOutPorts() {
		names = append(names, port.String())
	}
	return names
}

// NewSink opens the output port selected by cfg.
func NewSink(cfg config.MIDIConfig) (*Sink, error) {
	port, err := FindOutPort(cfg.Port)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output port: %w", err)
	}
	s := newSink(send, uint8(cfg.BaseChannel))
	s.port = port
	return s, nil
}

func newSink(send func(msg gomidi.Message) error, baseChannel uint8) *Sink {
	return &Sink{
		send:        send,
		baseChannel: baseChannel,
		last:        make(map[ccKey]uint8),
	}
}

// PortName returns the name of the open port, if any.
func (s *Sink) PortName() string {
	if s.port == nil {
		return ""
	}
	return s.port.String()
}

// Deliver sends the changed channels of frame. A failed CC is retried on the
// next frame.
func (s *Sink) Deliver(ctx context.Context, frame targeting.Frame) error {
	var errs []error
	for _, f := range frame.Fixtures {
		for _, ch := range [2]targeting.Channel{f.Pan, f.Tilt} {
			if err := s.sendChannel(ch); err != nil {
				errs = append(errs, fmt.Errorf("fixture %q channel %d: %w", f.Name, ch.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) sendChannel(ch targeting.Channel) error {
	key := s.address(ch.ID)
	value := ccValue(ch.Value, ch.MaxValue)
	if prev, ok := s.last[key]; ok && prev == value {
		return nil
	}
	if err := s.send(gomidi.ControlChange(key.channel, key.controller, value)); err != nil {
		return err
	}
	s.last[key] = value
	return nil
}

func (s *Sink) address(id uint8) ccKey {
	if id < 128 {
		return ccKey{channel: s.baseChannel, controller: id}
	}
	return ccKey{channel: s.baseChannel + 1, controller: id - 128}
}

// Reset forgets the sent values so the next frame resends every CC.
func (s *Sink) Reset() {
	s.last = make(map[ccKey]uint8)
}

// Close closes the output port.
func (s *Sink) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// ccValue maps [-max, +max] linearly onto 0..127. Values outside the range
// saturate.
func ccValue(value, max float64) uint8 {
	if max <= 0 || math.IsNaN(value) {
		return 64
	}
	v := math.Round((value + max) / (2 * max) * 127)
	return uint8(math.Max(0, math.Min(127, v)))
}
