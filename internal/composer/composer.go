package composer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Conceptual-Machines/lyric-composer/internal/generation"
	"golang.org/x/sync/singleflight"
)

// Generator produces candidate continuations for a request
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]string, error)
}

// Composer runs generation requests against UI state
type Composer struct {
	generator Generator
	inflight  singleflight.Group
}

func NewComposer(generator Generator) *Composer {
	return &Composer{generator: generator}
}

// Generate builds a request from state's controls and shows the result or the error.
// Concurrent calls with the same key and the same request share one outbound call.
// The shared call outlives any single caller; each caller stops waiting when its own
// ctx is done. The loading state is always cleared before returning.
func (c *Composer) Generate(ctx context.Context, key string, state *UIState) error {
	state.BeginRequest()
	defer state.EndRequest()

	req := BuildRequest(state.Controls)

	flightKey, err := inflightKey(key, req)
	if err != nil {
		state.ShowError(err)
		return err
	}

	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(flightKey, func() (interface{}, error) {
		return c.generator.Generate(shared, req)
	})

	select {
	case <-ctx.Done():
		state.ShowError(ctx.Err())
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			state.ShowError(res.Err)
			return res.Err
		}
		state.ShowCandidates(res.Val.([]string))
		return nil
	}
}

// inflightKey scopes coalescing to one session and one request payload
func inflightKey(key string, req generation.Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}
	return key + "\x00" + string(payload), nil
}
