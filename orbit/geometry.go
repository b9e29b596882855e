// Package orbit provides the pass geometry feeding the link budget and the
// channel model: slant range as a function of elevation, and SGP4-based
// sampling of range, range rate, and Doppler shift over a satellite pass.
package orbit

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all spherical-Earth
// geometry here (kilometres).
const EarthRadiusKm = 6371.0

// Vec3 is an ECEF-style vector in kilometres.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// SlantRangeKm returns the distance from a ground observer to a satellite at
// the given altitude and elevation angle, on a spherical Earth:
//
//	d = sqrt((R+h)^2 - R^2 cos^2 e) - R sin e
//
// At 90° elevation this reduces to the altitude; at 0° it is the range to
// the geometric horizon.
func SlantRangeKm(elevationDeg, altitudeKm float64) (float64, error) {
	if elevationDeg < 0 || elevationDeg > 90 {
		return 0, fmt.Errorf("orbit: elevation must be in [0, 90] degrees, got %g", elevationDeg)
	}
	if altitudeKm <= 0 {
		return 0, fmt.Errorf("orbit: altitude must be positive, got %g km", altitudeKm)
	}
	e := elevationDeg * math.Pi / 180
	r := EarthRadiusKm
	orbitR := r + altitudeKm
	cosE := math.Cos(e)
	return math.Sqrt(orbitR*orbitR-r*r*cosE*cosE) - r*math.Sin(e), nil
}

// ElevationDegrees returns the elevation angle of the target as seen from
// the observer, in degrees. 0° = geometric horizon, 90° = overhead.
func ElevationDegrees(observer, target Vec3) float64 {
	v := target.Sub(observer)
	vNorm := v.Norm()
	if vNorm == 0 {
		return 90
	}

	// Local zenith at the observer is its normalised position vector.
	r := observer.Norm()
	if r == 0 {
		return 90
	}
	zenith := Vec3{X: observer.X / r, Y: observer.Y / r, Z: observer.Z / r}

	cosGamma := v.Dot(zenith) / vNorm
	if cosGamma > 1 {
		cosGamma = 1
	} else if cosGamma < -1 {
		cosGamma = -1
	}
	gammaDeg := math.Acos(cosGamma) * 180.0 / math.Pi

	// Elevation is measured from the local horizon (90° − zenith angle).
	return 90.0 - gammaDeg
}
