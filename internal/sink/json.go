package sink

import (
	"encoding/json"
	"io"
	"time"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
)

// jsonEncoder writes a JSON array incrementally, one record at a time, so a
// million-record job never holds more than one record in memory.
type jsonEncoder struct {
	w     io.Writer
	first bool
}

func newJSONEncoder(w io.Writer) *jsonEncoder {
	return &jsonEncoder{w: w, first: true}
}

func (e *jsonEncoder) begin([]generator.Field) error {
	_, err := io.WriteString(e.w, "[\n")
	return err
}

func (e *jsonEncoder) write(rec generator.Record) error {
	if !e.first {
		if _, err := io.WriteString(e.w, ",\n"); err != nil {
			return err
		}
	}
	e.first = false

	b, err := json.Marshal(normalize(rec))
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

func (e *jsonEncoder) end() error {
	_, err := io.WriteString(e.w, "\n]\n")
	return err
}

// normalize renders timestamps as RFC 3339 in UTC so both output formats
// serialize time the same way.
func normalize(rec generator.Record) generator.Record {
	out := make(generator.Record, len(rec))
	for k, v := range rec {
		if t, ok := v.(time.Time); ok {
			out[k] = t.UTC().Format(time.RFC3339)
			continue
		}
		out[k] = v
	}
	return out
}
