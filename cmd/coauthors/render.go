package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
)

// watchDebounce coalesces the burst of events one save produces.
const watchDebounce = 200 * time.Millisecond

func (a *app) renderCmd() *cobra.Command {
	var (
		outputs       []string
		format        string
		title         string
		watch         bool
		processWorker bool
	)

	cmd := &cobra.Command{
		Use:   "render <source>",
		Short: "Lay out the coauthor graph and render it to PNG or SVG",
		Long: `Lay out the coauthor graph and render it to one or more images.

The format of each output comes from --format or its extension. Several
outputs share one layout and are written in parallel.

Examples:
  coauthors render pubs.json -o graph.png
  coauthors render pubs.json -o graph.png -o graph.svg --recipe recent
  coauthors render pubs.yaml -o graph.svg --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) == 0 {
				outputs = []string{"coauthors." + a.cfg.Render.Format}
			}
			for _, out := range outputs {
				switch f := render.FormatFor(out, format); f {
				case "png", "svg":
				default:
					return fmt.Errorf("%s: %w %q", out, render.ErrUnsupportedFormat, f)
				}
			}
			w, err := a.worker(processWorker)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			job := renderJob{src: args[0], outputs: outputs, format: format, title: title, worker: w}
			if err := a.render(ctx, job); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			a.logger.Info("watching for changes", "path", job.src)
			return watchFile(ctx, job.src, watchDebounce, a.logger, func() error {
				return a.render(ctx, job)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "Output image; repeat for several (default coauthors.<render.format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Image format: png or svg (default from extension)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Header card title (default the recipe description)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-render whenever the source file changes")
	cmd.Flags().BoolVar(&processWorker, "process-worker", false, "Run the layout in a child process")
	return cmd
}

// renderJob is one render invocation, repeated on every change in watch mode.
type renderJob struct {
	src     string
	outputs []string
	format  string
	title   string
	worker  layout.Worker
}

// render loads the source, lays it out once and writes every output.
func (a *app) render(ctx context.Context, job renderJob) error {
	start := time.Now()
	s, err := a.openSession(ctx, job.src)
	if err != nil {
		return err
	}
	if err := s.layout(ctx, job.worker, nil); err != nil {
		return err
	}
	title := job.title
	if title == "" {
		title = s.recipe.Description
	}
	f := s.frame(a.cfg, title)

	var g errgroup.Group
	for _, out := range job.outputs {
		g.Go(func() error {
			if err := render.SaveFile(out, job.format, f); err != nil {
				return fmt.Errorf("rendering %s: %w", out, err)
			}
			a.logger.Info("rendered", "path", out, "format", render.FormatFor(out, job.format))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "rendered %d authors and %d links to %d file(s) in %s\n",
		s.stats.Nodes, s.stats.Links, len(job.outputs), time.Since(start).Round(time.Millisecond))
	return nil
}
