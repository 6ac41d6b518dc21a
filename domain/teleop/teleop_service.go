package teleop

import (
	"fmt"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/geo/r3"
)

// Command is a velocity command for the target. Linear axes are normalized
// to [-1, 1]; angular axes are accepted for Twist compatibility and ignored.
type Command struct {
	LinearX  float64 `json:"linear_x"`
	LinearY  float64 `json:"linear_y"`
	LinearZ  float64 `json:"linear_z"`
	AngularX float64 `json:"angular_x"`
	AngularY float64 `json:"angular_y"`
	AngularZ float64 `json:"angular_z"`
}

// Sample returns the linear part of the command.
func (c Command) Sample() r3.Vector {
	return r3.Vector{X: c.LinearX, Y: c.LinearY, Z: c.LinearZ}
}

// SampleWriter receives validated samples.
type SampleWriter interface {
	Set(sample r3.Vector)
	Clear()
}

// TeleopService turns HTTP velocity commands into target samples
type TeleopService struct {
	samples SampleWriter
}

// NewTeleopService creates a new teleop service instance
func NewTeleopService(samples SampleWriter) *TeleopService {
	return &TeleopService{samples: samples}
}

// CommandHandler processes incoming teleop commands
func (s *TeleopService) CommandHandler(c *fiber.Ctx) error {
	var cmd Command
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := s.ValidateCommand(cmd); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	s.SendCommand(cmd)

	return c.JSON(fiber.Map{
		"status":  "command received",
		"command": cmd,
	})
}

// StopHandler zeroes the current sample
func (s *TeleopService) StopHandler(c *fiber.Ctx) error {
	s.samples.Clear()
	return c.JSON(fiber.Map{"status": "stopped"})
}

// ValidateCommand checks that every linear axis is finite and within [-1, 1]
func (s *TeleopService) ValidateCommand(cmd Command) error {
	axes := []struct {
		name  string
		value float64
	}{
		{"linear_x", cmd.LinearX},
		{"linear_y", cmd.LinearY},
		{"linear_z", cmd.LinearZ},
	}
	for _, a := range axes {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) || math.Abs(a.value) > 1 {
			return fmt.Errorf("%s must be within [-1, 1], got %v", a.name, a.value)
		}
	}
	return nil
}

// SendCommand stores a validated command as the current sample
func (s *TeleopService) SendCommand(cmd Command) {
	s.samples.Set(cmd.Sample())
}
