package queue

import (
	"context"
	"time"
)

// JobPusher adapts a queue Client to the extraction service's enqueue hook.
type JobPusher struct {
	Client Client
}

// Push wraps the job id in a versioned message and sends it.
func (p JobPusher) Push(ctx context.Context, jobID, requestID string) error {
	return p.Client.Send(ctx, Message{
		JobID:      jobID,
		RequestID:  requestID,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	})
}
