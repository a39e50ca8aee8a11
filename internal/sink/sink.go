// Package sink streams generated records to durable files. Memory use stays
// O(1) in record count for both formats; progress is reported at a bounded
// cadence and capped below 100 until the final record is flushed.
package sink

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/domain"
	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
)

// DefaultBatchSize is how many records pass between progress reports.
const DefaultBatchSize = 1000

// Mid-stream progress never reaches 100; that value belongs to the
// completion transition.
const maxMidstreamPct = 99.0

// ProgressFunc receives progress percentages in [0, 99] during the stream.
type ProgressFunc func(pct float64)

// Result is the metadata of a finished write.
type Result struct {
	Path        string
	FileSize    int64
	RecordCount int
	Elapsed     time.Duration
}

// encoder is the per-format serialization half; the streaming loop is shared.
type encoder interface {
	begin(fields []generator.Field) error
	write(rec generator.Record) error
	end() error
}

// Write pulls count records from g and streams them into f, which it takes
// ownership of and closes. The context is checked at the progress cadence, so
// cancellation is cooperative rather than preemptive. The caller owns cleanup
// of the partial file after an error.
func Write(ctx context.Context, format domain.OutputFormat, f *os.File, g generator.Generator, count int, progress ProgressFunc) (*Result, error) {
	defer f.Close()

	if count <= 0 {
		return nil, fmt.Errorf("sink: record count must be positive, got %d", count)
	}

	start := time.Now()

	buf := bufio.NewWriterSize(f, 64*1024)

	var enc encoder
	switch format {
	case domain.FormatCSV:
		enc = newCSVEncoder(buf)
	case domain.FormatJSON:
		enc = newJSONEncoder(buf)
	default:
		return nil, fmt.Errorf("sink: unsupported output format %q", format)
	}

	if err := enc.begin(g.Fields()); err != nil {
		return nil, err
	}

	written := 0
	for i := 0; i < count; i++ {
		if i%DefaultBatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if progress != nil && i > 0 {
				pct := float64(i) / float64(count) * 100
				if pct > maxMidstreamPct {
					pct = maxMidstreamPct
				}
				progress(pct)
			}
		}

		rec, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("sink: generate record %d: %w", i+1, err)
		}
		if err := enc.write(rec); err != nil {
			return nil, fmt.Errorf("sink: write record %d: %w", i+1, err)
		}
		written++
	}

	if err := enc.end(); err != nil {
		return nil, err
	}
	if err := buf.Flush(); err != nil {
		return nil, fmt.Errorf("sink: flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("sink: sync: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("sink: stat: %w", err)
	}

	return &Result{
		Path:        f.Name(),
		FileSize:    info.Size(),
		RecordCount: written,
		Elapsed:     time.Since(start),
	}, nil
}
