package composer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Conceptual-Machines/lyric-composer/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockGenerator is a test implementation of the Generator interface
type MockGenerator struct {
	calls        atomic.Int32
	generateFunc func(ctx context.Context, req generation.Request) ([]string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, req generation.Request) ([]string, error) {
	m.calls.Add(1)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, req)
	}
	return nil, nil
}

func TestGenerateShowsCandidates(t *testing.T) {
	var seen generation.Request
	mock := &MockGenerator{
		generateFunc: func(_ context.Context, req generation.Request) ([]string, error) {
			seen = req
			return []string{"foo bar", "", "baz"}, nil
		},
	}
	state := &UIState{Controls: Controls{Creativity: 5, Repetition: 8, Prompt: "hi"}}

	err := NewComposer(mock).Generate(context.Background(), "s1", state)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo bar", "", "baz"}, state.Candidates)
	assert.Equal(t, "hi", seen.Prompt)
	assert.False(t, state.Loading)
	assert.False(t, state.SubmitDisabled)
	assert.Empty(t, state.ErrorMessage)
}

func TestGenerateFailureLeavesDraft(t *testing.T) {
	mock := &MockGenerator{
		generateFunc: func(context.Context, generation.Request) ([]string, error) {
			return nil, &generation.RequestFailedError{StatusCode: 429, Message: "rate limited"}
		},
	}
	state := &UIState{Draft: "X", Candidates: []string{"stale"}, FinalizeEnabled: true}

	err := NewComposer(mock).Generate(context.Background(), "s1", state)
	require.Error(t, err)

	assert.Equal(t, "rate limited", state.ErrorMessage)
	assert.Equal(t, "X", state.Draft)
	assert.Empty(t, state.Candidates)
	assert.True(t, state.FinalizeEnabled)
	assert.False(t, state.Loading)
	assert.False(t, state.SubmitDisabled)
}

func TestGenerateStateDuringCall(t *testing.T) {
	state := &UIState{Candidates: []string{"stale"}, ErrorMessage: "old"}
	mock := &MockGenerator{
		generateFunc: func(context.Context, generation.Request) ([]string, error) {
			assert.True(t, state.Loading)
			assert.True(t, state.SubmitDisabled)
			assert.Empty(t, state.Candidates)
			assert.Empty(t, state.ErrorMessage)
			return []string{"new"}, nil
		},
	}

	require.NoError(t, NewComposer(mock).Generate(context.Background(), "s1", state))
	assert.Equal(t, []string{"new"}, state.Candidates)
}

func TestGenerateCoalescesSameSession(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	mock := &MockGenerator{
		generateFunc: func(context.Context, generation.Request) ([]string, error) {
			once.Do(func() { close(started) })
			<-release
			return []string{"shared"}, nil
		},
	}
	c := NewComposer(mock)

	first, second := &UIState{}, &UIState{}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Generate(context.Background(), "same", first))
	}()
	<-started
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Generate(context.Background(), "same", second))
	}()

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), mock.calls.Load())
	assert.Equal(t, []string{"shared"}, first.Candidates)
	assert.Equal(t, []string{"shared"}, second.Candidates)
}

func TestGenerateDifferentPromptsAreNotShared(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	mock := &MockGenerator{
		generateFunc: func(_ context.Context, req generation.Request) ([]string, error) {
			if req.Prompt == "A" {
				once.Do(func() { close(started) })
				<-release
			}
			return []string{"continuation of " + req.Prompt}, nil
		},
	}
	c := NewComposer(mock)

	first := &UIState{Controls: Controls{Creativity: 5, Repetition: 8, Prompt: "A"}}
	second := &UIState{Controls: Controls{Creativity: 5, Repetition: 8, Prompt: "B"}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, c.Generate(context.Background(), "same", first))
	}()
	<-started

	require.NoError(t, c.Generate(context.Background(), "same", second))
	close(release)
	<-done

	assert.Equal(t, int32(2), mock.calls.Load())
	assert.Equal(t, []string{"continuation of A"}, first.Candidates)
	assert.Equal(t, []string{"continuation of B"}, second.Candidates)

	require.NoError(t, second.Accept(0))
	assert.Equal(t, "B\n\nContinuation of B", second.Draft)
}

func TestGenerateCanceledCallerDoesNotFailFollower(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	mock := &MockGenerator{
		generateFunc: func(ctx context.Context, _ generation.Request) ([]string, error) {
			once.Do(func() { close(started) })
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return []string{"shared"}, nil
		},
	}
	c := NewComposer(mock)
	controls := Controls{Creativity: 5, Repetition: 8, Prompt: "hi"}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := &UIState{Controls: controls}
	leaderDone := make(chan error, 1)
	go func() {
		leaderDone <- c.Generate(leaderCtx, "same", leader)
	}()
	<-started

	follower := &UIState{Controls: controls}
	followerDone := make(chan error, 1)
	go func() {
		followerDone <- c.Generate(context.Background(), "same", follower)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-leaderDone, context.Canceled)
	assert.False(t, leader.Loading)

	close(release)
	require.NoError(t, <-followerDone)
	assert.Equal(t, []string{"shared"}, follower.Candidates)
	assert.Empty(t, follower.ErrorMessage)
	assert.Equal(t, int32(1), mock.calls.Load())
}

func TestGenerateDifferentSessionsAreIndependent(t *testing.T) {
	mock := &MockGenerator{
		generateFunc: func(context.Context, generation.Request) ([]string, error) {
			return []string{"x"}, nil
		},
	}
	c := NewComposer(mock)

	require.NoError(t, c.Generate(context.Background(), "a", &UIState{}))
	require.NoError(t, c.Generate(context.Background(), "b", &UIState{}))

	assert.Equal(t, int32(2), mock.calls.Load())
}

func TestGenerateTransportError(t *testing.T) {
	mock := &MockGenerator{
		generateFunc: func(context.Context, generation.Request) ([]string, error) {
			return nil, errors.New("generation request failed: connection refused")
		},
	}
	state := &UIState{}

	err := NewComposer(mock).Generate(context.Background(), "s", state)
	require.Error(t, err)
	assert.Equal(t, "generation request failed: connection refused", state.ErrorMessage)
	assert.False(t, state.Loading)
}
