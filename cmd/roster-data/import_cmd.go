package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

type importOptions struct {
	clientOptions
	input  string
	format string
	dryRun bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upload a roster file (json or xlsx) to the staff collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.input, "input", "", "Roster file to import (required)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Input format: json|xlsx (detected when empty)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what would be imported without writing")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, opts importOptions) error {
	if strings.TrimSpace(opts.input) == "" {
		return withCode(exitUsage, errors.New("--input is required"))
	}
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return withCode(exitUsage, errors.Wrap(err, "read input"))
	}
	client, err := opts.client()
	if err != nil {
		return err
	}

	report, err := client.ImportStaff(ctx, filepath.Base(opts.input), data, opts.format, opts.dryRun)
	if err != nil {
		return classify(err)
	}
	return writeJSONLine(out, map[string]any{
		"run_id":            report.RunID,
		"source":            report.Source,
		"dry_run":           report.DryRun,
		"total":             report.Total,
		"accepted":          report.Accepted,
		"skipped_duplicate": report.SkippedDuplicate,
		"skipped_invalid":   report.SkippedInvalid,
		"summary":           report.Summary,
	})
}
