// Batched loading of the fact table. The fact set does not fit comfortably
// next to the driver's insert buffers, so rows are submitted in fixed-size
// sequential batches: peak memory handed to the backend is O(batch size) and
// a mid-run failure leaves a row count from which the operator can tell how
// many batches committed.
//
// On every successful flush a progress line is logged with running totals and
// instantaneous rows/sec since the previous flush.

package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// CopyFn abstracts a backend's bulk insert for one table. It inserts rows
// (aligned to columns) and returns the number of rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches submits rows in sequential batches of batchSize via copyFn. It
// returns the total number of rows reported inserted and the first error.
// Batches are never reordered and there is no retry: a batch failure is fatal
// to the run and surfaced to the caller with the totals so far.
//
// Resume-on-failure is the caller's concern: slice rows at the recovered
// offset and call again.
func LoadBatches(ctx context.Context, columns []string, rows [][]any, batchSize int, copyFn CopyFn) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int64
		start   = time.Now()
		lastTS  = start
	)
	for off := 0; off < len(rows); off += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		n, err := copyFn(ctx, columns, rows[off:end])
		total += n
		if err != nil {
			log.Printf("loader: batch failed at offset=%d total_inserted=%d err=%v", off, total, err)
			return total, err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		log.Printf("batch #%d: rps=%.0f inserted=%s total_inserted=%s elapsed=%s",
			batches, rps, humanize.Comma(n), humanize.Comma(total),
			now.Sub(start).Truncate(time.Millisecond))
		lastTS = now
	}
	return total, nil
}
