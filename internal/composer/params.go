package composer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Slider-backed parameter names; these are also the control ids on the page
const (
	ParamTemperature = "temperature"
	ParamRepetition  = "repetition"
)

// ErrUnknownParameter is returned for a slider name that is not configured
var ErrUnknownParameter = errors.New("unknown parameter")

// Parameter describes one slider control
type Parameter struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// LabelID is the id of the element that mirrors the slider value
func (p Parameter) LabelID() string {
	return p.Name + "-value"
}

// Parameters is the fixed set of sliders shown on the composer page.
// Defaults map to the generation service's own defaults (temperature 0.5, repetition 1.199).
var Parameters = []Parameter{
	{Name: ParamTemperature, Label: "Creativiteit", Min: 1, Max: 10, Step: 1, Default: 5},
	{Name: ParamRepetition, Label: "Herhaling", Min: 0, Max: 10, Step: 1, Default: 8},
}

// LookupParameter finds a configured slider by name
func LookupParameter(name string) (Parameter, error) {
	for _, p := range Parameters {
		if p.Name == name {
			return p, nil
		}
	}
	return Parameter{}, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// ParseValue parses a slider value as submitted by the browser.
// Range is enforced by the control itself, so out-of-range values pass through.
// NaN and infinities are rejected; they cannot be sent as JSON.
func ParseValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid slider value %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid slider value %q: not a finite number", raw)
	}
	return v, nil
}

// FormatValue renders a slider value the way its label shows it
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
