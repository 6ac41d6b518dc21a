// Package targeting aims a rig of moving heads at one shared target point.
//
// A Driver owns the World (the target and every fixture). Each tick it pulls one
// input sample, integrates it into the target, solves pan/tilt for every fixture
// and hands one consistent Frame to the output sink.
package targeting

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector3 is a point or direction in room coordinates: X left/right,
// Y forward/back, Z up/down.
type Vector3 = r3.Vector

// Solve returns the pan and tilt angles, in degrees, that point a fixture
// mounted at fixturePos at targetPos.
//
// Pan is the azimuth in the x-z plane. Tilt uses the unnormalized distance
// as the adjacent side; downstream calibration depends on that exact formula.
// ErrDegenerateGeometry is returned when both points coincide.
func Solve(fixturePos, targetPos Vector3) (pan, tilt float64, err error) {
	direction := targetPos.Sub(fixturePos)
	distance := direction.Norm()
	if distance == 0 {
		return 0, 0, ErrDegenerateGeometry
	}
	unit := Vector3{X: direction.X / distance, Y: direction.Y / distance, Z: direction.Z / distance}

	pan = degrees(math.Atan2(unit.X, unit.Z))
	tilt = degrees(math.Atan2(unit.Y, distance))
	return pan, tilt, nil
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
