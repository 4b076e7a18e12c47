package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pfrederiksen/deetlist/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Result is a successfully extracted entry.
type Result struct {
	Index  int    `json:"index"`
	Entry  Entry  `json:"entry"`
	Record Record `json:"record"`
}

// Failure is an entry that could not be extracted.
type Failure struct {
	Index int   `json:"index"`
	Entry Entry `json:"entry"`
	Err   error `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Entry.Kind, f.Entry.URL, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// MarshalJSON writes the error as a string.
func (f Failure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Index int    `json:"index"`
		Entry Entry  `json:"entry"`
		Error string `json:"error"`
	}{f.Index, f.Entry, msg})
}

// Batch holds the outcome of ExtractAll. Results and Failures are each
// sorted by entry index; together they cover every entry exactly once.
type Batch struct {
	Results  []Result  `json:"results"`
	Failures []Failure `json:"failures"`
}

// OK reports whether every entry succeeded.
func (b *Batch) OK() bool {
	return len(b.Failures) == 0
}

type outcome struct {
	rec Record
	err error
}

// ExtractAll extracts every entry as an independent unit. At most
// Options.Concurrency units run at once and each is abandoned after
// Options.UnitTimeout.
func (d *Driver) ExtractAll(ctx context.Context, entries []Entry) *Batch {
	slots := make([]outcome, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Concurrency)

	for i, e := range entries {
		if err := gctx.Err(); err != nil {
			slots[i] = outcome{err: fmt.Errorf("%w: %w", ErrAbandoned, err)}
			continue
		}
		g.Go(func() error {
			rec, err := d.runUnit(gctx, e)
			slots[i] = outcome{rec: rec, err: err}
			// Unit errors stay in their slot so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	batch := &Batch{
		Results:  make([]Result, 0, len(entries)),
		Failures: make([]Failure, 0),
	}
	for i, o := range slots {
		if o.err != nil {
			d.metrics.IncrCounter("extract.failures")
			d.log.Error("extraction failed", logger.Fields{
				"kind":  string(entries[i].Kind),
				"url":   entries[i].URL,
				"index": i,
			}, o.err)
			batch.Failures = append(batch.Failures, Failure{Index: i, Entry: entries[i], Err: o.err})
			continue
		}
		batch.Results = append(batch.Results, Result{Index: i, Entry: entries[i], Record: o.rec})
	}
	return batch
}

// runUnit runs one Extract under the unit timeout. A unit still running when
// the timeout fires is abandoned; its goroutine finishes in the background.
func (d *Driver) runUnit(ctx context.Context, e Entry) (Record, error) {
	if d.opts.UnitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.UnitTimeout)
		defer cancel()
	}

	done := make(chan outcome, 1)
	go func() {
		rec, err := d.Extract(ctx, e)
		done <- outcome{rec: rec, err: err}
	}()

	select {
	case o := <-done:
		return o.rec, o.err
	case <-ctx.Done():
		select {
		case o := <-done:
			return o.rec, o.err
		default:
		}
		if d.opts.UnitTimeout > 0 {
			return nil, fmt.Errorf("%w after %s: %w", ErrAbandoned, d.opts.UnitTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrAbandoned, ctx.Err())
	}
}
