package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/source"
)

func (a *app) importCmd() *cobra.Command {
	var (
		output       string
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Convert a source into a SQLite database or a JSONL file",
		Long: `Read a source in any supported format and write it as a SQLite database
or a JSONL file. Importing into an existing database replaces its contents.

Examples:
  coauthors import pubs.json -o pubs.db
  coauthors import pubs.yaml -o pubs.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				format source.Format
				err    error
			)
			if outputFormat != "" {
				format, err = source.ParseFormat(outputFormat)
			} else {
				format, err = source.DetectFormat(output)
			}
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ds, err := a.loadDataset(ctx, args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create dir: %w", err)
			}

			switch format {
			case source.FormatSQLite:
				db, err := source.OpenDB(output)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.Import(ctx, ds); err != nil {
					return err
				}
			case source.FormatJSONL:
				if err := writeJSONLFile(output, ds); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w %q for import (use sqlite or jsonl)", source.ErrUnknownFormat, format)
			}

			a.logger.Info("imported", "path", output, "format", format)
			fmt.Fprintf(a.stdout, "imported %d persons and %d publications into %s\n",
				len(ds.Persons), len(ds.Publications), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output database or JSONL file (required)")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: sqlite or jsonl (default from extension)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func writeJSONLFile(path string, ds source.Dataset) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return source.WriteJSONL(f, ds)
}
