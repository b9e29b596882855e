package linkbudget

import (
	"fmt"
	"math"
)

// RainCoefficients are the k/alpha power-law regression coefficients of the
// simplified rain model: specific attenuation = k * R^alpha in dB/km for a
// rain rate R in mm/h. The values are frequency-specific approximations and
// are injected at construction so a different band only needs a different
// coefficient set, not different algorithm code.
type RainCoefficients struct {
	K     float64
	Alpha float64
}

// CoefficientsSubGHz approximates the 868/915/923 MHz ISM bands. Rain
// attenuation is nearly negligible below 1 GHz; the coefficients reflect
// that rather than an interpolation of the full ITU regression tables.
var CoefficientsSubGHz = RainCoefficients{K: 0.0000352, Alpha: 0.880}

// Atmosphere computes simplified excess losses for a slant path through the
// troposphere. The terms are fixed closed forms, not a real ITU-R model:
// they reproduce the magnitude and elevation scaling of each effect well
// enough for margin budgeting.
type Atmosphere struct {
	rain RainCoefficients

	// rainHeightKm is the effective height of the rain layer.
	rainHeightKm float64
	// gasZenithDB and cloudZenithDB are zenith attenuations scaled by the
	// cosecant of the elevation angle.
	gasZenithDB   float64
	cloudZenithDB float64
	// scintillationDB is a flat fade allowance for tropospheric
	// scintillation at low elevation.
	scintillationDB float64
}

// NewAtmosphere builds an atmosphere model around the given rain
// coefficients.
func NewAtmosphere(rain RainCoefficients) *Atmosphere {
	return &Atmosphere{
		rain:            rain,
		rainHeightKm:    3.0,
		gasZenithDB:     0.05,
		cloudZenithDB:   0.05,
		scintillationDB: 0.3,
	}
}

// RainAttenuationDB returns the rain loss over the slant path for the given
// rain rate (mm/h) and elevation angle (degrees).
func (a *Atmosphere) RainAttenuationDB(rainRateMMH, elevationDeg float64) (float64, error) {
	if rainRateMMH < 0 {
		return 0, fmt.Errorf("attenuation: rain rate must be non-negative, got %g mm/h", rainRateMMH)
	}
	if rainRateMMH == 0 {
		return 0, nil
	}
	specific := a.rain.K * math.Pow(rainRateMMH, a.rain.Alpha)
	path, err := slantPathKm(a.rainHeightKm, elevationDeg)
	if err != nil {
		return 0, err
	}
	return specific * path, nil
}

// GasAttenuationDB returns the gaseous absorption loss at the given
// elevation.
func (a *Atmosphere) GasAttenuationDB(elevationDeg float64) (float64, error) {
	return cosecantScaledDB(a.gasZenithDB, elevationDeg)
}

// CloudAttenuationDB returns the cloud liquid-water loss at the given
// elevation.
func (a *Atmosphere) CloudAttenuationDB(elevationDeg float64) (float64, error) {
	return cosecantScaledDB(a.cloudZenithDB, elevationDeg)
}

// ScintillationDB returns the flat scintillation fade allowance.
func (a *Atmosphere) ScintillationDB() float64 {
	return a.scintillationDB
}

// TotalExcessLossDB sums all atmospheric terms for use as the ExcessLossDB
// input of Compute.
func (a *Atmosphere) TotalExcessLossDB(rainRateMMH, elevationDeg float64) (float64, error) {
	rain, err := a.RainAttenuationDB(rainRateMMH, elevationDeg)
	if err != nil {
		return 0, err
	}
	gas, err := a.GasAttenuationDB(elevationDeg)
	if err != nil {
		return 0, err
	}
	cloud, err := a.CloudAttenuationDB(elevationDeg)
	if err != nil {
		return 0, err
	}
	return rain + gas + cloud + a.ScintillationDB(), nil
}

// slantPathKm converts a vertical layer height to a slant path length using
// the flat-layer cosecant approximation.
func slantPathKm(heightKm, elevationDeg float64) (float64, error) {
	if elevationDeg <= 0 || elevationDeg > 90 {
		return 0, fmt.Errorf("attenuation: elevation must be in (0, 90] degrees, got %g", elevationDeg)
	}
	return heightKm / math.Sin(elevationDeg*math.Pi/180), nil
}

func cosecantScaledDB(zenithDB, elevationDeg float64) (float64, error) {
	path, err := slantPathKm(1, elevationDeg)
	if err != nil {
		return 0, err
	}
	return zenithDB * path, nil
}
