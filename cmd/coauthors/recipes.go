package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func (a *app) recipesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List the filter recipes",
		Long: `List the builtin recipes and those loaded from the recipe directory
(default: "recipes" next to the config file). A recipe file holds

  recipes:
    - name: recent-journals
      description: Journal articles of the last five years
      filters:
        types: [article]
        from: 5y
        min_link_weight: 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.loadRecipes()
			if err != nil {
				return err
			}
			recipes := l.List()
			width := 0
			for _, r := range recipes {
				width = max(width, runewidth.StringWidth(r.Name))
			}
			var sb strings.Builder
			for _, r := range recipes {
				sb.WriteString(runewidth.FillRight(r.Name, width))
				if r.Description != "" {
					sb.WriteString("  ")
					sb.WriteString(r.Description)
				}
				sb.WriteByte('\n')
			}
			_, err = fmt.Fprint(a.stdout, sb.String())
			return err
		},
	}
}
