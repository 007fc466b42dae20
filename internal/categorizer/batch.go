package categorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"
	"fjacquet/doc-recognizer/internal/parsererror"

	"github.com/shopspring/decimal"
)

// BatchPolicy decides how eligible items are split into chunks and how long
// to pause between chunks. Thresholds apply to the number of eligible items.
type BatchPolicy struct {
	SequentialMax   int // up to this many items: one chunk, no pause
	MediumMax       int // up to this many items: medium chunks
	MediumChunkSize int
	MediumDelay     time.Duration
	LargeChunkSize  int
	LargeDelay      time.Duration
}

// DefaultBatchPolicy keeps a statement under about 15 requests per minute.
func DefaultBatchPolicy() BatchPolicy {
	return BatchPolicy{
		SequentialMax:   5,
		MediumMax:       15,
		MediumChunkSize: 3,
		MediumDelay:     3 * time.Second,
		LargeChunkSize:  2,
		LargeDelay:      5 * time.Second,
	}
}

// Validate checks that the thresholds and chunk sizes are usable.
func (p BatchPolicy) Validate() error {
	switch {
	case p.SequentialMax < 0:
		return fmt.Errorf("sequential max must not be negative, got %d", p.SequentialMax)
	case p.MediumMax < p.SequentialMax:
		return fmt.Errorf("medium max (%d) must not be below sequential max (%d)", p.MediumMax, p.SequentialMax)
	case p.MediumChunkSize < 1 || p.LargeChunkSize < 1:
		return fmt.Errorf("chunk sizes must be at least 1, got medium=%d large=%d", p.MediumChunkSize, p.LargeChunkSize)
	case p.MediumDelay < 0 || p.LargeDelay < 0:
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// Plan returns the chunk size and inter-chunk delay for n eligible items.
func (p BatchPolicy) Plan(n int) (int, time.Duration) {
	switch {
	case n <= p.SequentialMax:
		return max(n, 1), 0
	case n <= p.MediumMax:
		return p.MediumChunkSize, p.MediumDelay
	default:
		return p.LargeChunkSize, p.LargeDelay
	}
}

// Item is one line to classify. Suggestion is filled in place.
type Item struct {
	Index       int
	Description string
	Amount      decimal.Decimal
	Suggestion  *models.CategorySuggestion
}

// Eligible reports whether the item is a charge with a description.
func (it Item) Eligible() bool {
	return it.Amount.IsNegative() && strings.TrimSpace(it.Description) != ""
}

// BatchSummary reports what a ClassifyAll run did.
type BatchSummary struct {
	Total      int
	Eligible   int
	Classified int
	Unmatched  int
	Failed     int
	Chunks     int
	ChunkSize  int
	Delay      time.Duration
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Coordinator classifies many items one at a time, in chunks separated by a pause.
type Coordinator struct {
	classifier CategoryClassifier
	policy     BatchPolicy
	sleep      Sleeper
	logger     logging.Logger
}

// NewCoordinator creates a Coordinator. A nil sleeper uses ContextSleep.
func NewCoordinator(classifier CategoryClassifier, policy BatchPolicy, sleep Sleeper, logger logging.Logger) *Coordinator {
	if sleep == nil {
		sleep = ContextSleep
	}
	return &Coordinator{
		classifier: classifier,
		policy:     policy,
		sleep:      sleep,
		logger:     logging.OrDefault(logger),
	}
}

// ClassifyAll suggests a category for every eligible item, in order.
//
// A chunk always runs to completion: ctx is checked before each chunk and
// during the pause, never between the calls of one chunk. A failed call is
// logged and leaves that item without a suggestion. The returned error is
// only ever the context's.
func (c *Coordinator) ClassifyAll(ctx context.Context, items []Item, catalog models.CategoryCatalog) (BatchSummary, error) {
	summary := BatchSummary{Total: len(items)}

	var eligible []int
	for i := range items {
		if items[i].Eligible() {
			eligible = append(eligible, i)
		}
	}
	summary.Eligible = len(eligible)
	if len(eligible) == 0 || len(catalog) == 0 {
		c.logger.Info("Nothing to classify",
			logging.F(logging.FieldCount, len(eligible)),
			logging.F("categories", len(catalog)))
		return summary, nil
	}

	chunkSize, delay := c.policy.Plan(len(eligible))
	summary.ChunkSize, summary.Delay = chunkSize, delay
	chunks := (len(eligible) + chunkSize - 1) / chunkSize

	log := c.logger.WithFields(
		logging.F(logging.FieldCount, len(eligible)),
		logging.F(logging.FieldBatchSize, chunkSize),
		logging.F(logging.FieldDelay, delay.String()))
	if len(eligible) > c.policy.MediumMax {
		log.Warn("Many movements to classify, this may exceed the model rate limit")
	}
	log.Info(fmt.Sprintf("Classifying %d of %d movements", len(eligible), len(items)))

	// Calls already started are allowed to finish.
	callCtx := context.WithoutCancel(ctx)

	for n := 0; n < chunks; n++ {
		if err := ctx.Err(); err != nil {
			log.Warn("Classification cancelled", logging.F(logging.FieldBatch, n+1))
			return summary, err
		}

		start := n * chunkSize
		end := min(start+chunkSize, len(eligible))
		c.logger.Debug(fmt.Sprintf("Processing batch %d/%d", n+1, chunks),
			logging.F(logging.FieldBatch, n+1),
			logging.F(logging.FieldBatchSize, end-start))

		for _, i := range eligible[start:end] {
			c.classifyItem(callCtx, &items[i], catalog, &summary)
		}
		summary.Chunks++

		if n < chunks-1 && delay > 0 {
			c.logger.Debug("Waiting before next batch", logging.F(logging.FieldDelay, delay.String()))
			if err := c.sleep(ctx, delay); err != nil {
				log.Warn("Classification cancelled", logging.F(logging.FieldBatch, n+1))
				return summary, err
			}
		}
	}

	log.Info("Classification completed",
		logging.F("classified", summary.Classified),
		logging.F("unmatched", summary.Unmatched),
		logging.F("failed", summary.Failed))
	return summary, nil
}

func (c *Coordinator) classifyItem(ctx context.Context, item *Item, catalog models.CategoryCatalog, summary *BatchSummary) {
	suggestion, err := c.classifier.Classify(ctx, item.Description, catalog)
	if err != nil {
		failure := &parsererror.ClassificationFailure{Index: item.Index, Description: item.Description, Err: err}
		c.logger.WithError(failure).Error("Failed to classify movement",
			logging.F("index", item.Index),
			logging.F(logging.FieldAmount, item.Amount.String()))
		summary.Failed++
		return
	}
	if suggestion == nil {
		summary.Unmatched++
		return
	}
	item.Suggestion = suggestion
	summary.Classified++
}

// ClassifyMovements runs ClassifyAll over statement movements and stores each
// suggestion on its movement. Movements that get no suggestion keep theirs.
func (c *Coordinator) ClassifyMovements(ctx context.Context, movements []models.StatementMovement, catalog models.CategoryCatalog) (BatchSummary, error) {
	items := make([]Item, len(movements))
	for i, m := range movements {
		items[i] = Item{Index: i, Description: m.Description, Amount: m.Amount}
	}

	summary, err := c.ClassifyAll(ctx, items, catalog)
	for _, it := range items {
		if it.Suggestion != nil {
			movements[it.Index].SuggestedCategory = it.Suggestion
		}
	}
	return summary, err
}
