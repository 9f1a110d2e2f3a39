package kimai

import (
	"encoding/json"
	"fmt"
)

// Entry is one timesheet record as returned by the service. The field set
// varies with the server's configuration and the requested detail level, so
// the payload is kept as decoded JSON and inspected by key.
type Entry map[string]any

// DurationSeconds reads the entry's duration field. A missing or null
// duration counts as zero; a present non-numeric value is an error.
func (e Entry) DurationSeconds() (float64, error) {
	raw, ok := e["duration"]
	if !ok || raw == nil {
		return 0, nil
	}
	switch value := raw.(type) {
	case float64:
		return value, nil
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0, fmt.Errorf("duration %q is not numeric", value.String())
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("duration has non-numeric type %T", raw)
	}
}
