package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/Latacz1/notatnik-treningowy/internal/calendar"
	"github.com/Latacz1/notatnik-treningowy/internal/stats"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var (
		file, from, to, mode, date string
		filter                     stats.Filter
		top                        int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the trainings of a date range or calendar view",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var summary stats.Summary
			if from != "" || to != "" {
				start, err := app.dateFlag(from)
				if err != nil {
					return err
				}
				end, err := app.dateFlag(to)
				if err != nil {
					return err
				}
				summary = stats.Summarize(doc.Trainings, start, end, filter)
			} else {
				viewMode := doc.ViewMode
				if mode != "" {
					if viewMode, err = calendar.ParseViewMode(mode); err != nil {
						return err
					}
				}
				if !viewMode.IsValid() {
					viewMode = calendar.DefaultViewMode
				}
				t, err := app.dateFlag(date)
				if err != nil {
					return err
				}
				summary = stats.SummarizeView(doc.Trainings, viewMode, t, filter)
			}

			return printSummary(app, summary, top)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Exported document JSON file (- for stdin)")
	cmd.Flags().StringVar(&from, "from", "", "Range start, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "Range end inclusive, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&mode, "mode", "", "Calendar view to summarize: day, week or month (default the document view)")
	cmd.Flags().StringVar(&date, "date", "", "Date within the view, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&filter.Category, "category", stats.FilterAll, "Category id filter")
	cmd.Flags().StringVar(&filter.Subcategory, "subcategory", stats.FilterAll, "Subcategory id filter")
	cmd.Flags().IntVar(&top, "top", 5, "Number of top exercises to list (0 lists all)")

	return cmd
}

func printSummary(app *App, s stats.Summary, top int) error {
	fmt.Fprintf(app.Out, "%s .. %s\n\n", s.From, s.To)

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "trainings\t%d\n", s.TotalTrainings)
	fmt.Fprintf(tw, "exercises\t%d\n", s.TotalExercises)
	fmt.Fprintf(tw, "sets\t%d\n", s.TotalSets)
	fmt.Fprintf(tw, "reps\t%d\n", s.TotalReps)
	fmt.Fprintf(tw, "volume kg\t%.1f\n", s.TotalWeightVolume)
	fmt.Fprintf(tw, "minutes\t%d\n", s.TotalDurationMinutes)
	fmt.Fprintf(tw, "distance km\t%.1f\n", s.TotalDistanceKm)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Categories) > 0 {
		fmt.Fprintln(app.Out, "\nCATEGORIES")
		tw = tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
		for _, c := range s.Categories {
			name := c.Name
			if name == "" {
				name = c.Category
			}
			fmt.Fprintf(tw, "%s\t%d\t%d%%\n", name, c.Count, c.Percent)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	exercises := s.Top(top)
	if len(exercises) > 0 {
		fmt.Fprintln(app.Out, "\nTOP EXERCISES")
		tw = tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tCOUNT\tSETS\tREPS\tMAX KG")
		for _, e := range exercises {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f\n", e.Name, e.Count, e.Sets, e.Reps, e.MaxWeightKg)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}
