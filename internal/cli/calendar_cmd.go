package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/notebook"
	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/spf13/cobra"
)

func newCalendarCmd(app *App) *cobra.Command {
	var file, date string

	cmd := &cobra.Command{
		Use:       "calendar [day|week|month]",
		Short:     "Show the trainings of a day, week or month",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(calendar.ViewDay), string(calendar.ViewWeek), string(calendar.ViewMonth)},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			mode := doc.ViewMode
			if len(args) == 1 {
				if mode, err = calendar.ParseViewMode(args[0]); err != nil {
					return err
				}
			}
			if !mode.IsValid() {
				mode = calendar.DefaultViewMode
			}

			t, err := app.dateFlag(date)
			if err != nil {
				return err
			}

			view := notebook.BuildCalendarView(doc.Trainings, mode, t, app.Now())
			return printCalendar(app, view)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Exported document JSON file (- for stdin)")
	cmd.Flags().StringVar(&date, "date", "", "Date within the shown range, YYYY-MM-DD (default today)")

	return cmd
}

func printCalendar(app *App, view notebook.CalendarView) error {
	fmt.Fprintf(app.Out, "%s\n\n", view.Title)

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tTRAININGS\tEXERCISES")
	for _, day := range view.Days {
		if view.Mode == calendar.ViewMonth && !day.InCurrentMonth {
			continue
		}
		t, _ := calendar.ParseDateKey(day.Date)
		marker := ""
		if day.IsToday {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%d\t%s\n",
			day.Date, marker,
			calendar.DayName(t.Weekday()),
			len(day.Trainings),
			exerciseNames(day.Trainings),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "\n< %s   > %s\n", view.Prev, view.Next)
	return nil
}

func exerciseNames(records []trainings.TrainingRecord) string {
	var names []string
	for _, r := range records {
		for _, e := range r.Exercises {
			names = append(names, e.Name.Resolve())
		}
	}
	return strings.Join(names, ", ")
}
