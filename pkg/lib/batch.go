package lib

import (
	"github.com/slok/hkxbatch/internal/app/convert"
)

// Batch is a running conversion batch.
type Batch struct {
	// ID is the unique batch ID (ULID).
	ID string

	batch  *convert.Batch
	events chan Event
}

func newBatch(b *convert.Batch) *Batch {
	pb := &Batch{
		ID:     b.ID,
		batch:  b,
		events: make(chan Event),
	}

	go func() {
		defer close(pb.events)
		for ev := range b.Events() {
			pb.events <- fromInternalEvent(ev)
		}
	}()

	return pb
}

// Events returns the progress of the batch. The channel is closed after the
// completed or cancelled event. Unread events are queued, so a slow reader never
// slows down the conversions, but the channel should be drained.
func (b *Batch) Events() <-chan Event { return b.events }

// Cancel stops starting new files. Files being converted are not interrupted.
func (b *Batch) Cancel() { b.batch.Cancel() }

// Wait blocks until every started file has finished and returns the outcome.
func (b *Batch) Wait() Outcome { return fromInternalOutcome(b.batch.Wait()) }
