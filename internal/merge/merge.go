// Package merge decides which incoming workout records are new and persists
// them, invoking a callback once per newly seen record.
package merge

import (
	"context"
	"log"
	"sync"

	"example.com/workoutcal/internal/domain"
)

// Store is the minimal persistence surface the coordinator needs.
type Store interface {
	Exists(ctx context.Context, startKey string) (bool, error)
	Insert(ctx context.Context, rec domain.RawRecord) error
}

// Result counts the per-record outcomes of one batch merge.
type Result struct {
	New    int
	Seen   int
	Failed int
}

// Option configures optional behaviour for the Coordinator.
type Option func(*Coordinator)

// WithLogger overrides the logger used to report per-record failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator fans a batch out over the store. Records are processed
// independently and without ordering guarantees between them.
type Coordinator struct {
	store  Store
	logger *log.Logger
}

// NewCoordinator constructs a Coordinator over the provided store.
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		logger: log.New(log.Writer(), "[merge] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type outcome int

const (
	outcomeNew outcome = iota
	outcomeSeen
	outcomeFailed
)

// Merge processes every record in the batch independently: a store failure on
// one record never stops the others. The callback runs exactly once per
// record newly inserted by this call, zero times for already-seen records,
// and never for a record whose insert failed. The exists/insert pair is not
// atomic; concurrent batches carrying the same start key race, which is
// tolerated — at worst one workout is stored twice or its callback is missed,
// and idempotent re-ingestion of a later batch recovers it.
func (c *Coordinator) Merge(ctx context.Context, batch []domain.RawRecord, onNew func(domain.RawRecord)) Result {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		res Result
	)
	for _, rec := range batch {
		wg.Add(1)
		go func(rec domain.RawRecord) {
			defer wg.Done()
			out := c.mergeOne(ctx, rec, onNew)
			mu.Lock()
			switch out {
			case outcomeNew:
				res.New++
			case outcomeSeen:
				res.Seen++
			case outcomeFailed:
				res.Failed++
			}
			mu.Unlock()
		}(rec)
	}
	wg.Wait()
	return res
}

func (c *Coordinator) mergeOne(ctx context.Context, rec domain.RawRecord, onNew func(domain.RawRecord)) outcome {
	seen, err := c.store.Exists(ctx, rec.StartKey)
	if err != nil {
		c.logger.Printf("existence check failed (start=%s): %v", rec.StartKey, err)
		return outcomeFailed
	}
	if seen {
		return outcomeSeen
	}
	if err := c.store.Insert(ctx, rec); err != nil {
		c.logger.Printf("insert failed (start=%s): %v", rec.StartKey, err)
		return outcomeFailed
	}
	onNew(rec)
	return outcomeNew
}
