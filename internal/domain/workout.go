// Package domain defines workout records, their validation, and the rules
// that turn a validated workout into a calendar event.
package domain

import (
	"encoding/json"
	"time"
)

// RawRecord is one element of an ingestion batch: the verbatim payload as
// posted by the exporter app, plus the literal start string that serves as
// the record's deduplication key. The payload is persisted untouched and
// re-decoded on every load.
type RawRecord struct {
	StartKey string
	Payload  json.RawMessage
}

// Workout is the fully-typed result of decoding a raw workout record.
type Workout struct {
	Name         string
	Start        time.Time
	End          time.Time
	StartKey     string
	IsIndoor     bool
	ActiveEnergy float64 // kcal
	StepCadence  float64 // steps per minute
	Distance     float64 // miles
	Speed        float64 // miles per hour
	AvgHeartRate float64
	MaxHeartRate float64
}
