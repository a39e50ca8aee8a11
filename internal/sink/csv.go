package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/HeetPatel8126/SyntheticDataGen/internal/generator"
)

type csvEncoder struct {
	w       *csv.Writer
	columns []string
}

func newCSVEncoder(w io.Writer) *csvEncoder {
	return &csvEncoder{w: csv.NewWriter(w)}
}

func (e *csvEncoder) begin(fields []generator.Field) error {
	e.columns = make([]string, 0, len(fields))
	for _, f := range fields {
		e.columns = append(e.columns, f.Name)
	}
	return e.w.Write(e.columns)
}

func (e *csvEncoder) write(rec generator.Record) error {
	row := make([]string, len(e.columns))
	for i, col := range e.columns {
		row[i] = formatCell(rec[col])
	}
	return e.w.Write(row)
}

func (e *csvEncoder) end() error {
	e.w.Flush()
	return e.w.Error()
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
