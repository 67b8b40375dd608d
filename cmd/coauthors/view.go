package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/graph"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/logging"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/recipe"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/ui"
)

func (a *app) viewCmd() *cobra.Command {
	var processWorker bool

	cmd := &cobra.Command{
		Use:   "view <source>",
		Short: "Explore the coauthor graph in the terminal",
		Long: `Open the interactive terminal viewer.

Hover an author to highlight their collaborations, click to pin the
selection, drag to pan and scroll to zoom. Tab cycles through the recipes;
press ? for all keys.

Without --recipe, a recipe picker is shown first when running on a terminal.
Logs are dropped unless --log-file is given, since the viewer owns the screen.

Examples:
  coauthors view pubs.json
  coauthors view pubs.db --recipe strong-ties --log-file /tmp/coauthors.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if a.logFile == "" {
				a.logger = logging.Discard()
				a.logOut = nil
			}

			l, err := a.loadRecipes()
			if err != nil {
				return err
			}
			name := a.recipeName
			if name == "" && isTerminal(a.stdin) && isTerminal(a.stdout) {
				if name, err = pickRecipe(l.List()); err != nil {
					return err
				}
			}
			first, err := resolveRecipe(l, name)
			if err != nil {
				return err
			}

			ds, err := a.loadDataset(ctx, args[0])
			if err != nil {
				return err
			}
			state, stats := graph.Build(ds.OriginalAuthors, ds.Publications, ds.People())
			a.logger.Info("graph built", "authors", stats.Nodes, "links", stats.Links, "skipped", stats.Skipped)

			w, err := a.worker(processWorker)
			if err != nil {
				return err
			}
			m, err := ui.New(ctx, ui.Config{
				State:   state,
				Recipes: rotateRecipes(l.List(), first.Name),
				Worker:  w,
				Zoom:    a.cfg.Zoom,
				Render:  a.cfg.RenderOptions(),
				Logger:  a.logger,
				Now:     a.now,
			})
			if err != nil {
				return withCode(ExitConfigError, err)
			}

			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(a.stdin),
				tea.WithOutput(a.stdout),
				tea.WithAltScreen(),
				tea.WithMouseAllMotion(),
			)
			if _, err := p.Run(); err != nil {
				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("running viewer: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&processWorker, "process-worker", false, "Run layouts in a child process")
	return cmd
}

// pickRecipe asks for a recipe. Aborting the form cancels the command.
func pickRecipe(recipes []recipe.Recipe) (string, error) {
	options := make([]huh.Option[string], 0, len(recipes))
	for _, r := range recipes {
		label := r.Name
		if r.Description != "" {
			label += " · " + r.Description
		}
		options = append(options, huh.NewOption(label, r.Name))
	}

	var name string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Recipe").
			Description("Filters applied to the publications; tab cycles them in the viewer.").
			Options(options...).
			Value(&name),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", context.Canceled
		}
		return "", fmt.Errorf("recipe picker: %w", err)
	}
	return name, nil
}

// rotateRecipes returns recipes starting at the one named first, keeping
// their cycle order.
func rotateRecipes(recipes []recipe.Recipe, first string) []recipe.Recipe {
	for i, r := range recipes {
		if r.Name == first {
			out := make([]recipe.Recipe, 0, len(recipes))
			out = append(out, recipes[i:]...)
			return append(out, recipes[:i]...)
		}
	}
	return recipes
}
