package stats

import (
	"math"
	"sort"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/taxonomy"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"
)

// FilterAll is what the stats panel sends when a filter is not set
const FilterAll = "all"

// Filter narrows the exercise entries taken into account.
// Records are always counted, whatever the filter.
type Filter struct {
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
}

func (f Filter) matches(e trainings.ExerciseEntry) bool {
	if f.Category != "" && f.Category != FilterAll &&
		taxonomy.CanonicalCategoryID(f.Category) != taxonomy.CanonicalCategoryID(e.Category) {
		return false
	}
	if f.Subcategory != "" && f.Subcategory != FilterAll && f.Subcategory != e.Subcategory {
		return false
	}
	return true
}

type CategoryCount struct {
	Category string `json:"category"`
	// Name is empty for categories missing from the catalog
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

type ExerciseStat struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Count       int     `json:"count"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	MaxWeightKg float64 `json:"maxWeightKg"`
}

type Summary struct {
	From                 string          `json:"from"`
	To                   string          `json:"to"`
	Filter               Filter          `json:"filter"`
	TotalTrainings       int             `json:"totalTrainings"`
	TotalExercises       int             `json:"totalExercises"`
	TotalSets            int             `json:"totalSets"`
	TotalReps            int             `json:"totalReps"`
	TotalWeightVolume    float64         `json:"totalWeightVolume"`
	TotalDurationMinutes int             `json:"totalDurationMinutes"`
	TotalDistanceKm      float64         `json:"totalDistanceKm"`
	Categories           []CategoryCount `json:"categories"`
	Exercises            []ExerciseStat  `json:"exercises"`
}

// Top returns at most n of the ranked exercises, all of them when n <= 0.
func (s Summary) Top(n int) []ExerciseStat {
	if n <= 0 || n >= len(s.Exercises) {
		return s.Exercises
	}
	return s.Exercises[:n]
}

// Summarize aggregates the records of the days in [start, end], both ends inclusive,
// compared by calendar day. A start after end gives an empty summary.
//
// Days are visited in date order and records in list order, so the first-seen tie break
// of the rankings does not depend on map iteration.
func Summarize(store trainings.Store, start, end time.Time, filter Filter) Summary {
	from, to := calendar.DateKey(start), calendar.DateKey(end)
	summary := Summary{
		From:       from,
		To:         to,
		Filter:     filter,
		Categories: []CategoryCount{},
		Exercises:  []ExerciseStat{},
	}
	if from > to {
		return summary
	}

	categoryIdx := map[string]int{}
	exerciseIdx := map[string]int{}

	for _, key := range store.Keys() {
		if key < from || key > to {
			continue
		}
		// keys that are not dates are never in range
		if _, err := calendar.ParseDateKey(key); err != nil {
			continue
		}

		for _, rec := range store[key] {
			summary.TotalTrainings++
			summary.TotalDurationMinutes += rec.DurationMinutes.Or(0)

			for _, e := range rec.Exercises {
				if !filter.matches(e) {
					continue
				}

				sets := e.Sets.Or(0)
				reps := sets * e.Reps.Or(0)
				weight := e.WeightKg.Or(0)

				summary.TotalExercises++
				summary.TotalSets += sets
				summary.TotalReps += reps
				summary.TotalWeightVolume += float64(reps) * weight
				summary.TotalDistanceKm += e.DistanceKm.Or(0)

				i, seen := categoryIdx[e.Category]
				if !seen {
					i = len(summary.Categories)
					categoryIdx[e.Category] = i
					summary.Categories = append(summary.Categories, CategoryCount{
						Category: e.Category,
						Name:     categoryName(e.Category),
					})
				}
				summary.Categories[i].Count++

				name := e.Name.Resolve()
				if name == "" {
					continue
				}
				j, seen := exerciseIdx[name]
				if !seen {
					j = len(summary.Exercises)
					exerciseIdx[name] = j
					summary.Exercises = append(summary.Exercises, ExerciseStat{
						Name:     name,
						Category: e.Category,
					})
				}
				stat := &summary.Exercises[j]
				stat.Count++
				stat.Sets += sets
				stat.Reps += reps
				stat.MaxWeightKg = math.Max(stat.MaxWeightKg, weight)
			}
		}
	}

	if summary.TotalExercises > 0 {
		for i := range summary.Categories {
			c := &summary.Categories[i]
			c.Percent = int(math.Round(float64(c.Count) * 100 / float64(summary.TotalExercises)))
		}
	}

	// stable sorts keep the first-seen order for equal counts
	sort.SliceStable(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Count > summary.Categories[j].Count
	})
	sort.SliceStable(summary.Exercises, func(i, j int) bool {
		return summary.Exercises[i].Count > summary.Exercises[j].Count
	})

	return summary
}

// SummarizeView aggregates the range shown by the calendar view around date.
func SummarizeView(store trainings.Store, mode calendar.ViewMode, date time.Time, filter Filter) Summary {
	start, end := calendar.RangeFor(mode, date)
	return Summarize(store, start, end, filter)
}

func categoryName(id string) string {
	if c := taxonomy.LookupCategory(id); c != nil {
		return c.Name
	}
	return ""
}
