package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyLegacyNames(t *testing.T) {
	cases := []struct {
		name   string
		indoor bool
		title  string
	}{
		{"Walking", true, TitleTreadmill},
		{"Walking", false, TitleWalk},
		{"Running", true, TitleTreadmill},
		{"Running", false, TitleRun},
	}
	for _, tc := range cases {
		w := validWorkout(t)
		w.Name = tc.name
		w.IsIndoor = tc.indoor
		ev, ok := NewEvent(w)
		require.True(t, ok, "%s indoor=%v", tc.name, tc.indoor)
		require.Equal(t, tc.title, ev.Title)
	}
}

func TestClassifyContemporaryNames(t *testing.T) {
	cases := map[string]string{
		"Indoor Walk":  TitleTreadmill,
		"Outdoor Walk": TitleWalk,
		"Indoor Run":   TitleTreadmill,
		"Outdoor Run":  TitleRun,
		"Elliptical":   TitleElliptical,
		"Hiking":       TitleHiking,
	}
	for name, title := range cases {
		w := validWorkout(t)
		w.Name = name
		ev, ok := NewEvent(w)
		require.True(t, ok, name)
		require.Equal(t, title, ev.Title)
	}
}

func TestAllowListRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"Yoga", "Swimming", "walking", ""} {
		w := validWorkout(t)
		w.Name = name
		ev, ok := NewEvent(w)
		require.False(t, ok, name)
		require.Nil(t, ev)
	}
}

func TestHikingScenarioBody(t *testing.T) {
	w, err := DecodeWorkout(json.RawMessage(hikingPayload))
	require.NoError(t, err)

	ev, ok := NewEvent(w)
	require.True(t, ok)

	require.Equal(t, "Hiking", ev.Title)
	require.Equal(t, time.Date(2021, time.September, 26, 0, 0, 0, 0, time.UTC), ev.Day)
	require.Contains(t, ev.Description, "Duration: 15:00")
	require.Contains(t, ev.Description, "100 calories")
	require.Contains(t, ev.Description, "1.00 miles")
	// speed 4 mph: (1/4)*60 = 15 minutes per mile
	require.Contains(t, ev.Description, "Pace: 15:00 /mile")
	require.Contains(t, ev.Description, "120 - 140 bpm")
}

func TestEllipticalBodyHasCadenceNotPace(t *testing.T) {
	w := validWorkout(t)
	w.Name = "Elliptical"
	w.StepCadence = 121.6

	ev, ok := NewEvent(w)
	require.True(t, ok)
	require.Contains(t, ev.Description, "Cadence: 122 steps/min")
	require.NotContains(t, ev.Description, "miles")
	require.NotContains(t, ev.Description, "Pace")
	require.Contains(t, ev.Description, "bpm")
}

func TestLongWorkoutUsesHourClock(t *testing.T) {
	w := validWorkout(t)
	w.End = w.Start.Add(time.Hour + 23*time.Minute + 5*time.Second)

	ev, ok := NewEvent(w)
	require.True(t, ok)
	require.Contains(t, ev.Description, "Duration: 01:23:05")
}

func TestCaloriesAndHeartRateRounded(t *testing.T) {
	w := validWorkout(t)
	w.ActiveEnergy = 99.5
	w.AvgHeartRate = 119.4
	w.MaxHeartRate = 140.6

	ev, ok := NewEvent(w)
	require.True(t, ok)
	require.Contains(t, ev.Description, "100 calories")
	require.Contains(t, ev.Description, "119 - 141 bpm")
}

func TestEventUIDDeterministic(t *testing.T) {
	a := validWorkout(t)
	b := validWorkout(t)
	evA, _ := NewEvent(a)
	evB, _ := NewEvent(b)
	require.Equal(t, evA.UID, evB.UID)

	b.StartKey = "2021-09-27T20:00:00"
	evC, _ := NewEvent(b)
	require.NotEqual(t, evA.UID, evC.UID)
}

func validWorkout(t *testing.T) *Workout {
	t.Helper()
	start := time.Date(2021, time.September, 26, 20, 0, 0, 0, time.UTC)
	return &Workout{
		Name:         "Hiking",
		Start:        start,
		End:          start.Add(15 * time.Minute),
		StartKey:     "2021-09-26T20:00:00",
		ActiveEnergy: 100,
		StepCadence:  30,
		Distance:     1,
		Speed:        4,
		AvgHeartRate: 120,
		MaxHeartRate: 140,
	}
}
