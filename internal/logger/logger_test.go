package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFieldsSortsKeys(t *testing.T) {
	fields := Fields{
		"status_code": 200,
		"path":        "/lyric_generator/",
		"duration_ms": int64(12),
		"ratio":       0.5,
	}

	assert.Equal(t, "{duration_ms=12, path=/lyric_generator/, ratio=0.50, status_code=200}", formatFields(fields))
}

func TestFormatFieldsEmpty(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t, "", formatFields(Fields{}))
}

func TestLoggingWithoutSentryClient(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("info", Fields{"k": "v"})
		Warn("warn", nil)
		Debug("debug", Fields{})
		Error("error", nil, Fields{"request_id": "abc"})
	})
}
