package pipeline

import (
	"context"

	"github.com/adsabs/orcidclaims/internal/adsapi"
)

// EnqueueOutputResults forwards a message to the external sink. No
// persistence happens here; match-claim already committed the record.
func (c *Coordinator) EnqueueOutputResults(msg adsapi.OutputMessage) {
	c.OutputResults.Enqueue(Job{Name: "output-results", Run: func(ctx context.Context) error {
		return c.deps.Output.Send(ctx, msg)
	}})
}

// TryEnqueueOutputResults is the non-blocking counterpart to
// EnqueueOutputResults.
func (c *Coordinator) TryEnqueueOutputResults(msg adsapi.OutputMessage) error {
	return c.OutputResults.TryEnqueue(Job{Name: "output-results", Run: func(ctx context.Context) error {
		return c.deps.Output.Send(ctx, msg)
	}})
}
