package orbit

import (
	"fmt"
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// speedOfLightKmS is the speed of light in kilometres per second.
const speedOfLightKmS = 299792.458

// earthMuKm3S2 is the standard gravitational parameter of the Earth.
const earthMuKm3S2 = 398600.4418

// Satellite propagates a TLE with SGP4 and answers pass-geometry questions
// for a fixed ground observer.
type Satellite struct {
	sat satellite.Satellite
}

// NewSatelliteFromTLE constructs a satellite from two TLE lines.
func NewSatelliteFromTLE(line1, line2 string) *Satellite {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &Satellite{sat: sat}
}

// PositionECEF propagates the satellite to t and returns its ECEF position
// in kilometres.
func (s *Satellite) PositionECEF(t time.Time) Vec3 {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	posECI, _ := satellite.Propagate(s.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	return Vec3{X: posECEF.X, Y: posECEF.Y, Z: posECEF.Z}
}

// PassSample is the pass geometry at a single instant.
type PassSample struct {
	Time         time.Time
	RangeKm      float64
	RangeRateKmS float64
	ElevationDeg float64
	// DopplerHz is the carrier shift from the radial velocity, positive when
	// the satellite approaches the observer.
	DopplerHz float64
}

// Sample propagates the satellite to t and returns the pass geometry for a
// ground observer at groundECEF (kilometres). The range rate is taken as a
// one-second finite difference, which is plenty for Doppler budgeting.
func (s *Satellite) Sample(t time.Time, groundECEF Vec3, carrierHz float64) (PassSample, error) {
	if carrierHz <= 0 {
		return PassSample{}, fmt.Errorf("orbit: carrier frequency must be positive, got %g Hz", carrierHz)
	}

	p1 := s.PositionECEF(t)
	p2 := s.PositionECEF(t.Add(time.Second))

	r1 := groundECEF.DistanceTo(p1)
	r2 := groundECEF.DistanceTo(p2)
	rate := r2 - r1 // km/s over the one-second step

	return PassSample{
		Time:         t,
		RangeKm:      r1,
		RangeRateKmS: rate,
		ElevationDeg: ElevationDegrees(groundECEF, p1),
		DopplerHz:    -carrierHz * rate / speedOfLightKmS,
	}, nil
}

// WorstCaseDopplerHz bounds the Doppler shift for a circular orbit at the
// given altitude: the full orbital velocity projected onto the line of
// sight, f * v / c. The channel model's DopplerMax should not exceed this.
func WorstCaseDopplerHz(carrierHz, altitudeKm float64) (float64, error) {
	if carrierHz <= 0 {
		return 0, fmt.Errorf("orbit: carrier frequency must be positive, got %g Hz", carrierHz)
	}
	if altitudeKm <= 0 {
		return 0, fmt.Errorf("orbit: altitude must be positive, got %g km", altitudeKm)
	}
	v := math.Sqrt(earthMuKm3S2 / (EarthRadiusKm + altitudeKm))
	return carrierHz * v / speedOfLightKmS, nil
}
