package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/movingheads/domain/inspection"
)

// StateProvider exposes the latest tick result.
type StateProvider interface {
	Latest() (inspection.Snapshot, bool)
}

// StateHandler returns the latest snapshot, or 503 before the first tick.
func StateHandler(state StateProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, ok := state.Latest()
		if !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "no tick has run yet")
		}
		return c.JSON(snap)
	}
}
