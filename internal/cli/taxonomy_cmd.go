package cli

import (
	"fmt"
	"strings"

	"github.com/Latacz1/notatnik-treningowy/internal/taxonomy"

	"github.com/spf13/cobra"
)

func newTaxonomyCmd(app *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "List exercise categories, subcategories and exercises",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := taxonomy.Categories()
			if category != "" {
				c := taxonomy.LookupCategory(category)
				if c == nil {
					return fmt.Errorf("unknown category %q", category)
				}
				categories = []taxonomy.Category{*c}
			}

			for _, c := range categories {
				fmt.Fprintf(app.Out, "%s %s [%s]\n", c.Icon, c.Name, c.ID)
				for _, s := range c.Subcategories {
					fmt.Fprintf(app.Out, "  %s [%s]: %s\n", s.Name, s.ID, strings.Join(s.Exercises, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list the given category id")

	return cmd
}
