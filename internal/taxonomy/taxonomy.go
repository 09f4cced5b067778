package taxonomy

import "strings"

const (
	Strength = "strength"
	Cardio   = "cardio"
	Mobility = "mobility"

	// legacyStrength is the strength category id used by older documents
	legacyStrength = "silownia"
)

// OtherExercise closes every exercise list, picking it means a custom exercise name is given.
const OtherExercise = "Inne"

type Subcategory struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Exercises []string `json:"exercises"`
}

// HasExercise reports whether name is one of the listed exercises, the Other sentinel included.
func (s *Subcategory) HasExercise(name string) bool {
	if s == nil {
		return false
	}
	for _, e := range s.Exercises {
		if e == name {
			return true
		}
	}
	return false
}

type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Icon          string        `json:"icon"`
	Color         string        `json:"color"`
	Subcategories []Subcategory `json:"subcategories"`
}

func (c *Category) Subcategory(id string) *Subcategory {
	if c == nil {
		return nil
	}
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == id {
			return &c.Subcategories[i]
		}
	}
	return nil
}

// IsOther reports whether the exercise name is the Other sentinel.
// The english spelling is accepted as well.
func IsOther(name string) bool {
	return name == OtherExercise || strings.EqualFold(name, "other")
}

// CanonicalCategoryID maps legacy category ids to the current ones.
func CanonicalCategoryID(id string) string {
	if id == legacyStrength {
		return Strength
	}
	return id
}

// LookupCategory returns nil for unknown ids.
func LookupCategory(id string) *Category {
	id = CanonicalCategoryID(id)
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}

// LookupSubcategory returns nil when either the category or the subcategory is unknown.
func LookupSubcategory(categoryID, subcategoryID string) *Subcategory {
	return LookupCategory(categoryID).Subcategory(subcategoryID)
}

// Categories returns a copy of the catalog in display order.
func Categories() []Category {
	categories := make([]Category, len(catalog))
	for i, c := range catalog {
		categories[i] = c
		categories[i].Subcategories = make([]Subcategory, len(c.Subcategories))
		for j, s := range c.Subcategories {
			categories[i].Subcategories[j] = Subcategory{
				ID:        s.ID,
				Name:      s.Name,
				Exercises: append([]string(nil), s.Exercises...),
			}
		}
	}
	return categories
}
