package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	calls   int
	success []bool
	counts  []int
}

func (r *recordingObserver) RecordGeneration(_ context.Context, _ time.Duration, candidates int, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.success = append(r.success, success)
	r.counts = append(r.counts, candidates)
}

func TestGenerateSuccess(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lyric_generator/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["foo bar", "", "baz"]`))
	}))
	defer server.Close()

	observer := &recordingObserver{}
	client := NewClient(server.URL+"/lyric_generator/", 0, observer)

	candidates, err := client.Generate(context.Background(), Request{
		Temperature: 0.5,
		TopK:        50,
		TopP:        0.5,
		NGram:       2,
		NSFW:        true,
		Prompt:      "hi",
		Repetition:  1.199,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo bar", "", "baz"}, candidates)

	assert.Equal(t, 0.5, got["temperature"])
	assert.Equal(t, 50.0, got["top-k"])
	assert.Equal(t, 0.5, got["top-p"])
	assert.Equal(t, 2.0, got["n_gram"])
	assert.Equal(t, true, got["nsfw"])
	assert.Equal(t, "hi", got["prompt"])
	assert.Equal(t, 1.199, got["repetition"])

	assert.Equal(t, 1, observer.calls)
	assert.Equal(t, []bool{true}, observer.success)
	assert.Equal(t, []int{3}, observer.counts)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	observer := &recordingObserver{}
	client := NewClient(server.URL, 0, observer)

	candidates, err := client.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Nil(t, candidates)
	assert.Equal(t, "rate limited", err.Error())

	var failed *RequestFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, http.StatusTooManyRequests, failed.StatusCode)
	assert.Equal(t, []bool{false}, observer.success)
}

func TestGenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, 0, nil)

	_, err := client.Generate(context.Background(), Request{})
	require.Error(t, err)

	var failed *RequestFailedError
	assert.False(t, errors.As(err, &failed))
	assert.Contains(t, err.Error(), "generation request failed")
}

func TestGenerateInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 0, nil).Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode generation response")
}

func TestEndpointJoin(t *testing.T) {
	assert.Equal(t, "http://gen/api/generate", NewClient("http://gen/api/", 0, nil).Endpoint())
	assert.Equal(t, "http://gen/api/generate", NewClient("http://gen/api", 0, nil).Endpoint())
}
