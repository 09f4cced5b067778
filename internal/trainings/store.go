package trainings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
)

var (
	ErrNoExercises      = errors.New("training has no named exercises")
	ErrRecordNotFound   = errors.New("training record not found")
	ErrDuplicateID      = errors.New("training record id already taken")
	ErrInvalidDateKey   = errors.New("invalid date key")
	ErrInvalidStartTime = errors.New("invalid start time")
)

// Store maps date keys (YYYY-MM-DD) to the records of that day, in insertion order.
// A missing key and an empty list both mean no trainings that day.
// Functions of this package never modify the store they get, they return a new one.
type Store map[string][]TrainingRecord

// Clone copies the map and the day lists. Records themselves are treated as values.
func (s Store) Clone() Store {
	clone := make(Store, len(s))
	for key, records := range s {
		if records == nil {
			clone[key] = []TrainingRecord{}
			continue
		}
		clone[key] = append(make([]TrainingRecord, 0, len(records)), records...)
	}
	return clone
}

// Keys returns the date keys in ascending order.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of records in the whole store.
func (s Store) Count() int {
	count := 0
	for _, records := range s {
		count += len(records)
	}
	return count
}

// Day returns the records of a day, nil-safe.
func Day(store Store, dateKey string) []TrainingRecord {
	if store == nil {
		return []TrainingRecord{}
	}
	records := store[dateKey]
	if records == nil {
		return []TrainingRecord{}
	}
	return records
}

// FindDateKey locates the day holding the record with the given id.
func FindDateKey(store Store, id int64) (string, bool) {
	for key, records := range store {
		for _, r := range records {
			if r.ID == id {
				return key, true
			}
		}
	}
	return "", false
}

func prepare(rec TrainingRecord) (TrainingRecord, error) {
	rec.Exercises = rec.CompleteExercises()
	if len(rec.Exercises) == 0 {
		return rec, ErrNoExercises
	}
	if rec.StartTime == "" {
		rec.StartTime = DefaultStartTime
	}
	if !ValidStartTime(rec.StartTime) {
		return rec, fmt.Errorf("%w: %q", ErrInvalidStartTime, rec.StartTime)
	}
	return rec, nil
}

// AddRecord appends rec to the day list, creating it if needed.
// Exercise entries without a resolved name are dropped, and when none remain the store is left as is.
func AddRecord(store Store, dateKey string, rec TrainingRecord) (Store, error) {
	if _, err := calendar.ParseDateKey(dateKey); err != nil {
		return store, fmt.Errorf("%w: %s", ErrInvalidDateKey, err)
	}

	rec, err := prepare(rec)
	if err != nil {
		return store, err
	}

	if _, taken := FindDateKey(store, rec.ID); taken {
		return store, fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
	}

	updated := store.Clone()
	updated[dateKey] = append(updated[dateKey], rec)
	return updated, nil
}

// UpdateRecord replaces the record with the given id in place, keeping its position and its id.
func UpdateRecord(store Store, id int64, rec TrainingRecord) (Store, error) {
	dateKey, found := FindDateKey(store, id)
	if !found {
		return store, fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}

	rec, err := prepare(rec)
	if err != nil {
		return store, err
	}
	rec.ID = id

	updated := store.Clone()
	records := updated[dateKey]
	for i := range records {
		if records[i].ID == id {
			if rec.Timestamp.IsZero() {
				rec.Timestamp = records[i].Timestamp
			}
			records[i] = rec
			break
		}
	}
	return updated, nil
}

// DeleteRecord removes the record from the given day. The day stays in the store as an empty list.
func DeleteRecord(store Store, dateKey string, id int64) (Store, error) {
	idx := -1
	for i, r := range store[dateKey] {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store, fmt.Errorf("%w: %d [%s]", ErrRecordNotFound, id, dateKey)
	}

	updated := store.Clone()
	records := updated[dateKey]
	updated[dateKey] = append(records[:idx:idx], records[idx+1:]...)
	return updated, nil
}

// NextID returns the unix millis of now, bumped forward until no record in the store uses it.
func NextID(store Store, now time.Time) int64 {
	taken := make(map[int64]bool, store.Count())
	for _, records := range store {
		for _, r := range records {
			taken[r.ID] = true
		}
	}
	id := now.UnixMilli()
	for taken[id] {
		id++
	}
	return id
}
