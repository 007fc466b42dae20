package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ThrottledModel spaces calls to an inner model so that no more than the
// configured number of requests start per minute.
type ThrottledModel struct {
	inner   Model
	limiter *rate.Limiter
}

// NewThrottledModel wraps m. A non-positive requestsPerMinute disables throttling.
func NewThrottledModel(m Model, requestsPerMinute int) Model {
	if requestsPerMinute <= 0 {
		return m
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &ThrottledModel{
		inner:   m,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (t *ThrottledModel) wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for model rate limit: %w", err)
	}
	return nil
}

// GenerateJSON implements Model.
func (t *ThrottledModel) GenerateJSON(ctx context.Context, prompt string, schema *Schema) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	return t.inner.GenerateJSON(ctx, prompt, schema)
}

// GenerateText implements Model.
func (t *ThrottledModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := t.wait(ctx); err != nil {
		return "", err
	}
	return t.inner.GenerateText(ctx, prompt)
}
