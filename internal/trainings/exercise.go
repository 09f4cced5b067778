package trainings

import (
	"encoding/json"
	"strings"

	"github.com/Latacz1/notatnik-treningowy/internal/taxonomy"
)

type nameKind uint8

const (
	nameNone nameKind = iota
	nameNamed
	nameCustom
)

// ExerciseName is either one of the catalog exercises or a free text custom name
// (picked through the Other entry of the subcategory list).
type ExerciseName struct {
	kind nameKind
	text string
}

func Named(name string) ExerciseName {
	return ExerciseName{kind: nameNamed, text: strings.TrimSpace(name)}
}

func Custom(text string) ExerciseName {
	return ExerciseName{kind: nameCustom, text: strings.TrimSpace(text)}
}

func (n ExerciseName) IsCustom() bool {
	return n.kind == nameCustom
}

// Resolve returns the display name. An empty result means the entry is incomplete.
func (n ExerciseName) Resolve() string {
	return n.text
}

func (n ExerciseName) String() string {
	return n.Resolve()
}

type ExerciseEntry struct {
	Category        string
	Subcategory     string
	Name            ExerciseName
	Sets            Int
	Reps            Int
	WeightKg        Float
	DurationMinutes Int
	DistanceKm      Float
	Note            string
}

// IsComplete reports whether the entry has a resolved exercise name.
func (e ExerciseEntry) IsComplete() bool {
	return e.Name.Resolve() != ""
}

type exerciseEntryJSON struct {
	Category           string `json:"category"`
	Subcategory        string `json:"subcategory"`
	ExerciseName       string `json:"exerciseName"`
	CustomExerciseName string `json:"customExerciseName"`
	Sets               Int    `json:"sets"`
	Reps               Int    `json:"reps"`
	WeightKg           Float  `json:"weightKg"`
	DurationMinutes    Int    `json:"durationMinutes"`
	DistanceKm         Float  `json:"distanceKm"`
	Note               string `json:"note"`
}

// legacy keys written by the first versions of the notebook
type legacyExerciseEntryJSON struct {
	exerciseEntryJSON
	Exercise       string `json:"exercise"`
	CustomExercise string `json:"customExercise"`
	Weight         Float  `json:"weight"`
	Duration       Int    `json:"duration"`
	Distance       Float  `json:"distance"`
}

func (e ExerciseEntry) MarshalJSON() ([]byte, error) {
	out := exerciseEntryJSON{
		Category:        e.Category,
		Subcategory:     e.Subcategory,
		Sets:            e.Sets,
		Reps:            e.Reps,
		WeightKg:        e.WeightKg,
		DurationMinutes: e.DurationMinutes,
		DistanceKm:      e.DistanceKm,
		Note:            e.Note,
	}
	switch e.Name.kind {
	case nameCustom:
		out.ExerciseName = taxonomy.OtherExercise
		out.CustomExerciseName = e.Name.text
	case nameNamed:
		out.ExerciseName = e.Name.text
	}
	return json.Marshal(out)
}

func (e *ExerciseEntry) UnmarshalJSON(b []byte) error {
	var in legacyExerciseEntryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	name := firstNonEmpty(in.ExerciseName, in.Exercise)
	custom := firstNonEmpty(in.CustomExerciseName, in.CustomExercise)

	*e = ExerciseEntry{
		Category:        taxonomy.CanonicalCategoryID(in.Category),
		Subcategory:     in.Subcategory,
		Sets:            in.Sets,
		Reps:            in.Reps,
		WeightKg:        firstValidFloat(in.WeightKg, in.Weight),
		DurationMinutes: firstValidInt(in.DurationMinutes, in.Duration),
		DistanceKm:      firstValidFloat(in.DistanceKm, in.Distance),
		Note:            in.Note,
	}
	switch {
	case taxonomy.IsOther(name):
		e.Name = Custom(custom)
	case name != "":
		e.Name = Named(name)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstValidInt(values ...Int) Int {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return Int{}
}

func firstValidFloat(values ...Float) Float {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return Float{}
}
