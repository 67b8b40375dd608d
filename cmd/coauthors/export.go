package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/export"
)

func (a *app) exportCmd() *cobra.Command {
	var (
		outputs       []string
		format        string
		title         string
		top           int
		positions     bool
		processWorker bool
	)

	cmd := &cobra.Command{
		Use:   "export <source>",
		Short: "Export the coauthor graph as GraphViz DOT, GDF or a markdown report",
		Long: `Export the filtered coauthor graph.

Formats:
  dot   GraphViz (undirected, weights as penwidth)
  gdf   GUESS / Gephi node and edge tables
  md    markdown coauthor report with a mermaid diagram

Without --output the export goes to stdout and --format is required.
With --positions the graph is laid out first and node positions are written
to DOT and GDF.

Examples:
  coauthors export pubs.json -f dot > coauthors.dot
  coauthors export pubs.json -o graph.gdf -o report.md --recipe journals
  coauthors export pubs.db -o graph.dot --positions`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(outputs) == 0 && format == "" {
				return fmt.Errorf("--format is required when writing to stdout")
			}
			for _, out := range outputs {
				switch f := export.FormatFor(out, format); f {
				case "dot", "gdf", "md":
				default:
					return fmt.Errorf("%s: %w %q", out, export.ErrUnsupportedFormat, f)
				}
			}

			ctx := cmd.Context()
			s, err := a.openSession(ctx, args[0])
			if err != nil {
				return err
			}
			if positions {
				w, err := a.worker(processWorker)
				if err != nil {
					return err
				}
				if err := s.layout(ctx, w, nil); err != nil {
					return err
				}
			}

			opts := export.DefaultOptions()
			opts.Positions = positions
			opts.Filters = s.filters
			opts.Generated = a.now()
			if title != "" {
				opts.Title = title
			}
			if cmd.Flags().Changed("top") {
				opts.TopCollaborations = top
			}

			if len(outputs) == 0 {
				return export.Write(a.stdout, format, s.state, s.overlay, opts)
			}
			var g errgroup.Group
			for _, out := range outputs {
				g.Go(func() error {
					if err := export.SaveFile(out, format, s.state, s.overlay, opts); err != nil {
						return fmt.Errorf("exporting %s: %w", out, err)
					}
					a.logger.Info("exported", "path", out, "format", export.FormatFor(out, format))
					return nil
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringArrayVarP(&outputs, "output", "o", nil, "Output file; repeat for several (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: dot, gdf or md (default from extension)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Report title")
	cmd.Flags().IntVar(&top, "top", 20, "Collaborations listed in the report")
	cmd.Flags().BoolVar(&positions, "positions", false, "Lay out the graph and include node positions")
	cmd.Flags().BoolVar(&processWorker, "process-worker", false, "Run the layout in a child process")
	return cmd
}
