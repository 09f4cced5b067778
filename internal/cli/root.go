package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/spf13/cobra"
)

// App holds what the commands share: where to print and what "today" is.
type App struct {
	Out io.Writer
	Now func() time.Time
}

// NewRootCmd creates the top-level "trainingctl" command with all subcommands.
func NewRootCmd(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Now == nil {
		app.Now = time.Now
	}

	root := &cobra.Command{
		Use:           "trainingctl",
		Short:         "Browse an exported training notebook document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)

	root.AddCommand(
		newCalendarCmd(app),
		newStatsCmd(app),
		newTaxonomyCmd(app),
	)

	return root
}

// loadDocument reads a document in its stored JSON shape. "-" reads stdin.
func loadDocument(path string, stdin io.Reader) (trainings.Document, error) {
	var doc trainings.Document
	if path == "" {
		return doc, fmt.Errorf("document file not given, use --file")
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return doc, fmt.Errorf("open document: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode document [%s]: %w", path, err)
	}
	return doc, nil
}

// dateFlag parses a YYYY-MM-DD flag value, empty meaning today.
func (app *App) dateFlag(value string) (time.Time, error) {
	if value == "" {
		now := app.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := calendar.ParseDateKey(value)
	if err != nil {
		return t, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}
