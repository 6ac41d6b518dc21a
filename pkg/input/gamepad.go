package input

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"rafaelmartins.com/p/usbhid"

	"github.com/open-teleop/movingheads/pkg/config"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// ErrNoGamepad is returned by the opener when no matching device is attached.
var ErrNoGamepad = errors.New("no gamepad found")

// reportReader is the part of a HID device the gamepad reads from.
type reportReader interface {
	GetInputReport() (byte, []byte, error)
	Close() error
}

type opener func() (reportReader, string, error)

// Gamepad reads stick positions from a USB HID gamepad. While no device is
// attached it samples as zero and keeps trying to reconnect.
type Gamepad struct {
	cfg    config.GamepadConfig
	logger customlog.Logger
	open   opener

	mu        sync.Mutex
	axes      r3.Vector
	connected bool
}

// NewGamepad creates a gamepad source for the device described by cfg.
func NewGamepad(cfg config.GamepadConfig, logger customlog.Logger) *Gamepad {
	if logger == nil {
		logger = customlog.NewDiscardLogger()
	}
	g := &Gamepad{cfg: cfg, logger: logger.WithField("source", "gamepad")}
	g.open = g.openUSB
	return g
}

func (g *Gamepad) openUSB() (reportReader, string, error) {
	devices, err := usbhid.Enumerate(func(dev *usbhid.Device) bool {
		if dev.VendorId() != g.cfg.VendorID {
			return false
		}
		return g.cfg.ProductID == 0 || dev.ProductId() == g.cfg.ProductID
	})
	if err != nil {
		return nil, "", fmt.Errorf("enumerate: %w", err)
	}
	if len(devices) == 0 {
		return nil, "", ErrNoGamepad
	}

	dev := devices[0]
	if err := dev.Open(true); err != nil {
		return nil, "", fmt.Errorf("open: %w", err)
	}
	return dev, dev.Product(), nil
}

// Sample returns the current stick positions, or zero when disconnected.
func (g *Gamepad) Sample() r3.Vector {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.connected {
		return r3.Vector{}
	}
	return g.axes
}

// Connected reports whether a device is currently attached.
func (g *Gamepad) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

// Run connects to the gamepad and reads reports until ctx is done.
func (g *Gamepad) Run(ctx context.Context) error {
	interval := g.cfg.ReconnectInterval()
	warned := false

	for {
		dev, product, err := g.open()
		if err != nil {
			if !warned {
				g.logger.Warnf("Gamepad %04x:%04x unavailable, retrying every %v: %v",
					g.cfg.VendorID, g.cfg.ProductID, interval, err)
				warned = true
			}
		} else {
			warned = false
			g.logger.Infof("Gamepad connected: %s", product)
			err = g.read(ctx, dev)
			g.setDisconnected()
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Warnf("Gamepad disconnected: %v", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// read blocks on input reports. The device is closed when ctx ends, which
// unblocks the pending read.
func (g *Gamepad) read(ctx context.Context, dev reportReader) error {
	stop := make(chan struct{})
	defer close(stop)

	var closeOnce sync.Once
	closeDev := func() { closeOnce.Do(func() { dev.Close() }) }
	defer closeDev()

	go func() {
		select {
		case <-ctx.Done():
			closeDev()
		case <-stop:
		}
	}()

	g.mu.Lock()
	g.connected = true
	g.axes = r3.Vector{}
	g.mu.Unlock()

	for {
		_, buf, err := dev.GetInputReport()
		if err != nil {
			return err
		}
		axes := g.decode(buf)

		g.mu.Lock()
		g.axes = axes
		g.mu.Unlock()
	}
}

func (g *Gamepad) setDisconnected() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = false
	g.axes = r3.Vector{}
}

func (g *Gamepad) decode(buf []byte) r3.Vector {
	return r3.Vector{
		X: g.axis(buf, g.cfg.Axes.X),
		Y: g.axis(buf, g.cfg.Axes.Y),
		Z: g.axis(buf, g.cfg.Axes.Z),
	}
}

func (g *Gamepad) axis(buf []byte, a config.AxisConfig) float64 {
	if a.Offset < 0 || a.Offset >= len(buf) {
		return 0
	}
	return normalizeAxis(buf[a.Offset], a.Invert, g.cfg.Deadzone)
}

// normalizeAxis maps an unsigned 8-bit stick reading onto [-1, 1], with the
// rest position 0x80 close to zero.
func normalizeAxis(raw byte, invert bool, deadzone float64) float64 {
	v := (float64(raw) - 127.5) / 127.5
	if math.Abs(v) < deadzone {
		return 0
	}
	if invert {
		v = -v
	}
	return v
}
