package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// timeLayouts are tried in order when parsing start/end strings. The exporter
// emits local timestamps without an offset; some builds append one.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Reason }

// ValidationError aggregates every field-level failure found in one record.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	reasons := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		reasons = append(reasons, f.Error())
	}
	return "invalid workout record: " + strings.Join(reasons, "; ")
}

// quantity is the shape of a named measurement group in the exporter payload.
type quantity struct {
	Qty *float64 `json:"qty"`
}

// DecodeWorkout turns a raw workout object into a typed Workout, or reports
// every field-level reason it cannot as a *ValidationError. Unknown fields
// are tolerated. Malformed input is an expected case and never panics.
func DecodeWorkout(payload json.RawMessage) (*Workout, error) {
	var raw struct {
		Name         *string   `json:"name"`
		Start        *string   `json:"start"`
		End          *string   `json:"end"`
		IsIndoor     bool      `json:"isIndoor"`
		ActiveEnergy *quantity `json:"activeEnergy"`
		StepCadence  *quantity `json:"stepCadence"`
		Distance     *quantity `json:"distance"`
		Speed        *quantity `json:"speed"`
		AvgHeartRate *quantity `json:"avgHeartRate"`
		MaxHeartRate *quantity `json:"maxHeartRate"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &ValidationError{Fields: []FieldError{{Field: "$", Reason: "not a workout object: " + err.Error()}}}
	}

	var errs []FieldError

	if raw.Name == nil || *raw.Name == "" {
		errs = append(errs, FieldError{Field: "name", Reason: "required"})
	}

	start, startKey := parseWhen(raw.Start, "start", &errs)
	end, _ := parseWhen(raw.End, "end", &errs)

	qty := func(field string, q *quantity) float64 {
		if q == nil || q.Qty == nil {
			errs = append(errs, FieldError{Field: field, Reason: "missing qty"})
			return 0
		}
		return *q.Qty
	}

	w := Workout{
		Start:        start,
		End:          end,
		StartKey:     startKey,
		IsIndoor:     raw.IsIndoor,
		ActiveEnergy: qty("activeEnergy", raw.ActiveEnergy),
		StepCadence:  qty("stepCadence", raw.StepCadence),
		Distance:     qty("distance", raw.Distance),
		Speed:        qty("speed", raw.Speed),
		AvgHeartRate: qty("avgHeartRate", raw.AvgHeartRate),
		MaxHeartRate: qty("maxHeartRate", raw.MaxHeartRate),
	}
	if raw.Name != nil {
		w.Name = *raw.Name
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return &w, nil
}

// parseWhen parses a timestamp field, appending a FieldError on failure. The
// returned key is the literal string: dedup identity is exact string
// equality, never the parsed instant.
func parseWhen(s *string, field string, errs *[]FieldError) (time.Time, string) {
	if s == nil || *s == "" {
		*errs = append(*errs, FieldError{Field: field, Reason: "required"})
		return time.Time{}, ""
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return t, *s
		}
	}
	*errs = append(*errs, FieldError{Field: field, Reason: "not a recognized date-time"})
	return time.Time{}, *s
}

// ExtractStartKey pulls the literal start string out of a raw workout object
// without validating the rest of it. Records with no usable start string
// cannot be keyed and are dropped at the ingestion boundary.
func ExtractStartKey(payload json.RawMessage) (string, bool) {
	var probe struct {
		Start *string `json:"start"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", false
	}
	if probe.Start == nil || *probe.Start == "" {
		return "", false
	}
	return *probe.Start, true
}
