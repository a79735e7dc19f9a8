package composer

import (
	"context"
	"errors"
	"fmt"
)

// EventKind names a user interaction on the composer page
type EventKind string

const (
	EventParam  EventKind = "param"  // slider moved
	EventSubmit EventKind = "submit" // generate button
	EventAccept EventKind = "accept" // candidate chosen
	EventEdit   EventKind = "edit"   // draft textarea edited
	EventReset  EventKind = "reset"  // clear button
)

// ErrUnknownEvent is returned for an event kind with no action
var ErrUnknownEvent = errors.New("unknown event")

// Event carries the form values that came with an interaction.
// Prompt and Draft are nil when the browser did not send them.
type Event struct {
	Kind      EventKind
	SessionID string
	Name      string
	Value     string
	Index     int
	Prompt    *string
	Draft     *string
	Controls  *Controls
}

// Action applies an event to the UI state
type Action func(ctx context.Context, state *UIState, ev Event) error

// Dispatcher maps events to actions
type Dispatcher struct {
	actions map[EventKind]Action
}

// NewDispatcher wires the composer's actions
func NewDispatcher(c *Composer) *Dispatcher {
	return &Dispatcher{
		actions: map[EventKind]Action{
			EventParam:  setParam,
			EventSubmit: c.submit,
			EventAccept: accept,
			EventEdit:   edit,
			EventReset:  reset,
		},
	}
}

// Dispatch runs the action registered for ev.Kind
func (d *Dispatcher) Dispatch(ctx context.Context, state *UIState, ev Event) error {
	action, ok := d.actions[ev.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
	}
	return action(ctx, state, ev)
}

func setParam(_ context.Context, state *UIState, ev Event) error {
	if _, err := LookupParameter(ev.Name); err != nil {
		return err
	}
	v, err := ParseValue(ev.Value)
	if err != nil {
		return err
	}
	return state.Controls.Set(ev.Name, v)
}

func (c *Composer) submit(ctx context.Context, state *UIState, ev Event) error {
	if ev.Controls != nil {
		state.Controls = *ev.Controls
	}
	// The failure is already shown in the error region.
	_ = c.Generate(ctx, ev.SessionID, state)
	return nil
}

func accept(_ context.Context, state *UIState, ev Event) error {
	if err := state.checkCandidate(ev.Index); err != nil {
		return err
	}
	syncText(state, ev)
	return state.Accept(ev.Index)
}

func edit(_ context.Context, state *UIState, ev Event) error {
	syncText(state, ev)
	return nil
}

func reset(_ context.Context, state *UIState, _ Event) error {
	state.Reset()
	return nil
}

// syncText copies textarea contents the user may have edited in the browser
func syncText(state *UIState, ev Event) {
	if ev.Prompt != nil {
		state.Controls.Prompt = *ev.Prompt
	}
	if ev.Draft != nil {
		state.Draft = *ev.Draft
	}
}
