package main

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
)

func (a *app) workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Serve one layout request on stdin/stdout",
		Long: `Read one JSON layout request from stdin and stream progress, then the
result, to stdout as one JSON message per line. This is the child side of
--process-worker and is not meant to be run by hand.`,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return layout.ServeWorker(cmd.Context(), a.stdin, a.stdout, a.cfg.Layout, a.logger)
		},
	}
}
