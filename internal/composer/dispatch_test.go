package composer

import (
	"context"
	"testing"

	"github.com/Conceptual-Machines/lyric-composer/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(candidates []string, err error) *Dispatcher {
	return NewDispatcher(NewComposer(&MockGenerator{
		generateFunc: func(context.Context, generation.Request) ([]string, error) {
			return candidates, err
		},
	}))
}

func strPtr(s string) *string {
	return &s
}

func TestDispatchParam(t *testing.T) {
	d := newTestDispatcher(nil, nil)
	state := NewUIState()

	require.NoError(t, d.Dispatch(context.Background(), state, Event{Kind: EventParam, Name: ParamTemperature, Value: "9"}))
	assert.Equal(t, 9.0, state.Controls.Creativity)

	err := d.Dispatch(context.Background(), state, Event{Kind: EventParam, Name: "volume", Value: "1"})
	assert.ErrorIs(t, err, ErrUnknownParameter)

	err = d.Dispatch(context.Background(), state, Event{Kind: EventParam, Name: ParamRepetition, Value: "x"})
	assert.Error(t, err)
	assert.Equal(t, 8.0, state.Controls.Repetition)
}

func TestDispatchSubmitThenAccept(t *testing.T) {
	d := newTestDispatcher([]string{"foo bar", "", "baz"}, nil)
	state := NewUIState()
	controls := Controls{Creativity: 4, Repetition: 2, Prompt: "hi"}

	require.NoError(t, d.Dispatch(context.Background(), state, Event{Kind: EventSubmit, SessionID: "s", Controls: &controls}))
	assert.Len(t, state.Candidates, 3)
	assert.Equal(t, controls, state.Controls)

	require.NoError(t, d.Dispatch(context.Background(), state, Event{Kind: EventAccept, Index: 0}))
	assert.Equal(t, "Hi\n\nFoo bar", state.Draft)
	assert.Empty(t, state.Candidates)
	assert.True(t, state.FinalizeEnabled)
}

func TestDispatchSubmitFailureIsShownNotReturned(t *testing.T) {
	d := newTestDispatcher(nil, &generation.RequestFailedError{StatusCode: 500, Message: "rate limited"})
	state := &UIState{Draft: "X"}

	require.NoError(t, d.Dispatch(context.Background(), state, Event{Kind: EventSubmit, SessionID: "s"}))
	assert.Equal(t, "rate limited", state.ErrorMessage)
	assert.Equal(t, "X", state.Draft)
	assert.False(t, state.SubmitDisabled)
	assert.False(t, state.Loading)
}

func TestDispatchAcceptUsesEditedText(t *testing.T) {
	d := newTestDispatcher(nil, nil)
	state := &UIState{Draft: "old", Controls: Controls{Prompt: "old prompt"}, Candidates: []string{"q"}}

	ev := Event{Kind: EventAccept, Index: 0, Prompt: strPtr("p"), Draft: strPtr("X")}
	require.NoError(t, d.Dispatch(context.Background(), state, ev))

	assert.Equal(t, "X\n\nP\n\nQ", state.Draft)
	assert.Equal(t, "p", state.Controls.Prompt)
}

func TestDispatchAcceptOutOfRangeLeavesState(t *testing.T) {
	d := newTestDispatcher(nil, nil)
	state := &UIState{Draft: "old", Candidates: []string{"q"}}

	ev := Event{Kind: EventAccept, Index: 3, Draft: strPtr("edited")}
	err := d.Dispatch(context.Background(), state, ev)

	assert.ErrorIs(t, err, ErrCandidateOutOfRange)
	assert.Equal(t, "old", state.Draft)
}

func TestDispatchEditAndReset(t *testing.T) {
	d := newTestDispatcher(nil, nil)
	state := &UIState{Draft: "a", FinalizeEnabled: true}

	require.NoError(t, d.Dispatch(context.Background(), state, Event{Kind: EventEdit, Draft: strPtr("b")}))
	assert.Equal(t, "b", state.Draft)
	assert.True(t, state.FinalizeEnabled)

	require.NoError(t, d.Dispatch(context.Background(), state, Event{Kind: EventReset}))
	assert.Empty(t, state.Draft)
	assert.False(t, state.FinalizeEnabled)
}

func TestDispatchUnknownEvent(t *testing.T) {
	d := newTestDispatcher(nil, nil)

	err := d.Dispatch(context.Background(), &UIState{}, Event{Kind: "finalize"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}
