package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Calendar titles for recognized workout types.
const (
	TitleTreadmill  = "Cardio - treadmill"
	TitleWalk       = "Cardio - walk"
	TitleRun        = "Cardio - run"
	TitleElliptical = "Cardio - elliptical"
	TitleHiking     = "Hiking"
)

// eventUIDSpace namespaces deterministic event UIDs so a workout keeps the
// same UID across restarts and repeated feed fetches.
var eventUIDSpace = uuid.MustParse("5f0cbe23-41a4-4b54-9c1e-8a87c1f3d6b2")

// Event is a display-ready, all-day calendar entry derived from a workout.
// Events are constructed fresh from the stored record on every load; they
// are never mutated in place.
type Event struct {
	UID         string
	Title       string
	Description string
	Day         time.Time
}

// NewEvent classifies and formats a decoded workout. The boolean is false
// when the workout name is not on the allow-list; there is no fallback
// title. Input is assumed to have passed DecodeWorkout.
func NewEvent(w *Workout) (*Event, bool) {
	title, ok := classify(w.Name, w.IsIndoor)
	if !ok {
		return nil, false
	}
	return &Event{
		UID:         uuid.NewSHA1(eventUIDSpace, []byte(w.StartKey)).String(),
		Title:       title,
		Description: formatBody(w),
		Day:         time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location()),
	}, true
}

// classify maps a workout name (and, for the two legacy names, the indoor
// flag) to a calendar title. Indoor walks and runs both land on the
// treadmill title.
func classify(name string, indoor bool) (string, bool) {
	switch name {
	case "Walking":
		if indoor {
			return TitleTreadmill, true
		}
		return TitleWalk, true
	case "Running":
		if indoor {
			return TitleTreadmill, true
		}
		return TitleRun, true
	case "Indoor Walk", "Indoor Run":
		return TitleTreadmill, true
	case "Outdoor Walk":
		return TitleWalk, true
	case "Outdoor Run":
		return TitleRun, true
	case "Elliptical":
		return TitleElliptical, true
	case "Hiking":
		return TitleHiking, true
	}
	return "", false
}

func formatBody(w *Workout) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Duration: %s\n", formatClock(w.End.Sub(w.Start)))
	fmt.Fprintf(&b, "%d calories\n", int(math.Round(w.ActiveEnergy)))
	if w.Name == "Elliptical" {
		fmt.Fprintf(&b, "Cadence: %d steps/min\n", int(math.Round(w.StepCadence)))
	} else {
		fmt.Fprintf(&b, "%.2f miles\n", w.Distance)
		if w.Speed > 0 {
			pace := time.Duration((1 / w.Speed) * 60 * float64(time.Minute))
			fmt.Fprintf(&b, "Pace: %s /mile\n", formatClock(pace))
		}
	}
	fmt.Fprintf(&b, "%d - %d bpm", int(math.Round(w.AvgHeartRate)), int(math.Round(w.MaxHeartRate)))
	return b.String()
}

// formatClock renders a duration as mm:ss, or HH:mm:ss at an hour and above.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
