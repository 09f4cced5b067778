package trainings

import (
	"encoding/json"
	"time"
)

// DefaultStartTime is used for records saved without a start time
const DefaultStartTime = "08:00"

const startTimeLayout = "15:04"

type TrainingRecord struct {
	// ID is the creation time in unix millis, unique within the store
	ID              int64
	StartTime       string
	DurationMinutes Int
	Note            string
	Exercises       []ExerciseEntry
	Timestamp       time.Time
}

// ValidStartTime reports whether s is a HH:MM wall clock time.
func ValidStartTime(s string) bool {
	_, err := time.Parse(startTimeLayout, s)
	return err == nil
}

// CompleteExercises returns the entries that have a resolved exercise name, keeping their order.
func (r TrainingRecord) CompleteExercises() []ExerciseEntry {
	var complete []ExerciseEntry
	for _, e := range r.Exercises {
		if e.IsComplete() {
			complete = append(complete, e)
		}
	}
	return complete
}

type trainingRecordJSON struct {
	ID              int64           `json:"id"`
	StartTime       string          `json:"startTime"`
	DurationMinutes Int             `json:"durationMinutes"`
	Note            string          `json:"note"`
	Exercises       []ExerciseEntry `json:"exercises"`
	Timestamp       string          `json:"timestamp,omitempty"`
}

type legacyTrainingRecordJSON struct {
	trainingRecordJSON
	Duration Int `json:"duration"`
}

func (r TrainingRecord) MarshalJSON() ([]byte, error) {
	out := trainingRecordJSON{
		ID:              r.ID,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		Note:            r.Note,
		Exercises:       r.Exercises,
	}
	if out.Exercises == nil {
		out.Exercises = []ExerciseEntry{}
	}
	if !r.Timestamp.IsZero() {
		out.Timestamp = r.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

func (r *TrainingRecord) UnmarshalJSON(b []byte) error {
	var in legacyTrainingRecordJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	*r = TrainingRecord{
		ID:              in.ID,
		StartTime:       in.StartTime,
		DurationMinutes: firstValidInt(in.DurationMinutes, in.Duration),
		Note:            in.Note,
		Exercises:       in.Exercises,
	}
	if in.Timestamp != "" {
		// a broken timestamp is not worth losing the record over
		if ts, err := time.Parse(time.RFC3339Nano, in.Timestamp); err == nil {
			r.Timestamp = ts
		}
	}
	return nil
}
