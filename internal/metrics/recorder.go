package metrics

import (
	"context"
	"time"
)

// Recorder fans request and generation metrics out to Sentry and CloudWatch
type Recorder struct {
	sentry     *SentryMetrics
	cloudwatch *Client
}

// NewRecorder creates a recorder; a nil CloudWatch client records to Sentry only
func NewRecorder(cw *Client) *Recorder {
	return &Recorder{
		sentry:     NewSentryMetrics(),
		cloudwatch: cw,
	}
}

// RecordAPIRequest records an inbound request
func (r *Recorder) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	if r.cloudwatch != nil {
		r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	}
}

// RecordGeneration records an outbound generation call
func (r *Recorder) RecordGeneration(ctx context.Context, duration time.Duration, candidates int, success bool) {
	r.sentry.RecordGeneration(ctx, duration, candidates, success)
	if r.cloudwatch != nil {
		r.cloudwatch.RecordGeneration(duration, candidates, success)
	}
}
