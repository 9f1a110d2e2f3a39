package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/devpbeat/kimai-tools/kimai"
)

// ErrInvalidDuration marks an entry whose duration field cannot be summed.
var ErrInvalidDuration = errors.New("invalid duration")

// canonicalColumns lead every export in this order when present. Remaining
// columns follow alphabetically so headers are stable across runs.
var canonicalColumns = []string{"begin", "end", "customer", "project", "activity", "description", "duration"}

// columnRenames maps well-known nested paths to their short column names.
var columnRenames = map[string]string{
	"project.name":          "project",
	"project.customer.name": "customer",
	"activity.name":         "activity",
}

// Report is the flattened, column-aligned form of one month's entries.
// Both output files are rendered from the same report, so their row sets
// are identical by construction.
type Report struct {
	Columns    []string
	Rows       [][]string
	TotalHours float64
}

func (r *Report) EntryCount() int {
	return len(r.Rows)
}

// BuildReport flattens the entries and computes the total-hours aggregate.
// The column set is the union of all entries' fields, discovered in a first
// pass before any row is rendered; entries missing a column get an empty
// cell. A missing duration counts as zero hours, a non-numeric one fails
// the whole report.
func BuildReport(entries []kimai.Entry) (*Report, error) {
	flattened := make([]map[string]string, 0, len(entries))
	columnSet := make(map[string]struct{})
	totalSeconds := 0.0

	for i, entry := range entries {
		seconds, err := entry.DurationSeconds()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidDuration, i, err)
		}
		totalSeconds += seconds

		flat := flattenEntry(entry)
		for column := range flat {
			columnSet[column] = struct{}{}
		}
		flattened = append(flattened, flat)
	}

	columns := orderColumns(columnSet)
	rows := make([][]string, 0, len(flattened))
	for _, flat := range flattened {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = flat[column]
		}
		rows = append(rows, row)
	}

	return &Report{
		Columns:    columns,
		Rows:       rows,
		TotalHours: totalSeconds / 3600.0,
	}, nil
}

// DefaultStem names the output files for one month's export.
func DefaultStem(year, month int) string {
	return fmt.Sprintf("monthly-report-%04d-%02d", year, month)
}

func orderColumns(columnSet map[string]struct{}) []string {
	// With nothing fetched there is no union to discover; fall back to the
	// well-known columns so the header row stays meaningful.
	if len(columnSet) == 0 {
		return append([]string(nil), canonicalColumns...)
	}

	remaining := make(map[string]struct{}, len(columnSet))
	for column := range columnSet {
		remaining[column] = struct{}{}
	}

	ordered := make([]string, 0, len(columnSet))
	for _, column := range canonicalColumns {
		if _, ok := remaining[column]; ok {
			ordered = append(ordered, column)
			delete(remaining, column)
		}
	}

	rest := make([]string, 0, len(remaining))
	for column := range remaining {
		rest = append(rest, column)
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

func flattenEntry(entry kimai.Entry) map[string]string {
	flat := make(map[string]string, len(entry))
	flattenInto("", map[string]any(entry), flat)
	return flat
}

func flattenInto(prefix string, values map[string]any, flat map[string]string) {
	for key, raw := range values {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := raw.(map[string]any); ok {
			flattenInto(path, nested, flat)
			continue
		}
		flat[columnName(path)] = renderValue(raw)
	}
}

func columnName(path string) string {
	if renamed, ok := columnRenames[path]; ok {
		return renamed
	}
	return path
}

func renderValue(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return collapseNewlines(value)
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	}
}

func collapseNewlines(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return value
	}
	lines := strings.FieldsFunc(value, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
	return strings.Join(lines, " ")
}
