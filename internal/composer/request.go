package composer

import "github.com/Conceptual-Machines/lyric-composer/internal/generation"

const (
	nGramLowRepetition = 0
	nGramDefault       = 2
)

// Controls is the state of the form controls a request is built from
type Controls struct {
	Creativity    float64 `json:"creativity"`
	Repetition    float64 `json:"repetition"`
	LowRepetition bool    `json:"low_repetition"`
	NSFW          bool    `json:"nsfw"`
	Prompt        string  `json:"prompt"`
}

// DefaultControls returns controls with every slider at its default
func DefaultControls() Controls {
	var c Controls
	for _, p := range Parameters {
		_ = c.Set(p.Name, p.Default)
	}
	return c
}

// Value returns the current value of a slider
func (c Controls) Value(name string) (float64, error) {
	switch name {
	case ParamTemperature:
		return c.Creativity, nil
	case ParamRepetition:
		return c.Repetition, nil
	}
	_, err := LookupParameter(name)
	return 0, err
}

// Set stores the value of a slider
func (c *Controls) Set(name string, v float64) error {
	switch name {
	case ParamTemperature:
		c.Creativity = v
	case ParamRepetition:
		c.Repetition = v
	default:
		_, err := LookupParameter(name)
		return err
	}
	return nil
}

// BuildRequest derives the generation payload from the controls.
// No clamping and no prompt validation.
func BuildRequest(c Controls) generation.Request {
	nGram := nGramDefault
	if c.LowRepetition {
		nGram = nGramLowRepetition
	}

	return generation.Request{
		Temperature: c.Creativity * 0.1,
		TopK:        c.Creativity * 10,
		TopP:        c.Creativity * 0.1,
		NGram:       nGram,
		NSFW:        c.NSFW,
		Prompt:      c.Prompt,
		Repetition:  (-0.1 * c.Repetition) + 1.999,
	}
}
