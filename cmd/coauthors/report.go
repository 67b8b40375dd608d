package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/export"
)

func (a *app) reportCmd() *cobra.Command {
	var (
		raw   bool
		title string
		top   int
	)

	cmd := &cobra.Command{
		Use:   "report <source>",
		Short: "Print the coauthor report",
		Long: `Print the markdown coauthor report: summary, publication types,
collaboration diagram, strongest collaborations and one section per original
author.

On a terminal the report is rendered with styles; otherwise, or with --raw,
plain markdown is written.

Examples:
  coauthors report pubs.json
  coauthors report pubs.json --recipe recent --top 10
  coauthors report pubs.json --raw > report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := export.DefaultOptions()
			opts.Filters = s.filters
			opts.Generated = a.now()
			opts.TopCollaborations = top
			if title != "" {
				opts.Title = title
			}
			md, err := export.GenerateReport(s.state, s.overlay, opts)
			if err != nil {
				return err
			}

			if raw || !isTerminal(a.stdout) {
				_, err = io.WriteString(a.stdout, md)
				return err
			}
			styled, err := renderMarkdown(md, terminalWidth(a.stdout))
			if err != nil {
				return fmt.Errorf("rendering report: %w", err)
			}
			_, err = io.WriteString(a.stdout, styled)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Write plain markdown even on a terminal")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Report title")
	cmd.Flags().IntVar(&top, "top", 20, "Collaborations listed")
	return cmd
}
