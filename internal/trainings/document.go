package trainings

import (
	"encoding/json"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
)

// Document is the whole per-user notebook, always written and pushed as one piece.
type Document struct {
	Trainings Store             `json:"trainings"`
	ViewMode  calendar.ViewMode `json:"viewMode"`
	UpdatedAt time.Time         `json:"updatedAt"`
	// Version is bumped by the store on every write
	Version int64 `json:"version"`
}

func NewDocument() Document {
	return Document{
		Trainings: Store{},
		ViewMode:  calendar.DefaultViewMode,
	}
}

// Clone returns a document whose store can be replaced without touching d.
func (d Document) Clone() Document {
	d.Trainings = d.Trainings.Clone()
	return d
}

type documentJSON struct {
	Trainings Store             `json:"trainings"`
	ViewMode  calendar.ViewMode `json:"viewMode"`
	UpdatedAt string            `json:"updatedAt"`
	Version   int64             `json:"version"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{
		Trainings: d.Trainings,
		ViewMode:  d.ViewMode,
		Version:   d.Version,
	}
	if out.Trainings == nil {
		out.Trainings = Store{}
	}
	if !out.ViewMode.IsValid() {
		out.ViewMode = calendar.DefaultViewMode
	}
	if !d.UpdatedAt.IsZero() {
		out.UpdatedAt = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON is lenient: unknown view modes fall back to the default one,
// missing trainings become an empty store and a broken updatedAt is ignored.
func (d *Document) UnmarshalJSON(b []byte) error {
	var in documentJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	*d = Document{
		Trainings: in.Trainings,
		ViewMode:  in.ViewMode,
		Version:   in.Version,
	}
	if d.Trainings == nil {
		d.Trainings = Store{}
	}
	if !d.ViewMode.IsValid() {
		d.ViewMode = calendar.DefaultViewMode
	}
	if in.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, in.UpdatedAt); err == nil {
			d.UpdatedAt = ts
		}
	}
	return nil
}
