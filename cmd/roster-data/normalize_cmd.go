package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/hotelstaff/roster/modules/roster/services"
	"github.com/hotelstaff/roster/modules/roster/services/codecs"
)

type normalizeOptions struct {
	input  string
	output string
}

func newNormalizeCmd() *cobra.Command {
	var opts normalizeOptions

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Clean a roster file offline and write the accepted records as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Roster file to clean (required)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Destination JSON file (required)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runNormalize(out io.Writer, opts normalizeOptions) error {
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return withCode(exitUsage, errors.Wrap(err, "read input"))
	}

	var cleaned bytes.Buffer
	report, err := services.Normalize(data, filepath.Base(opts.input), &cleaned)
	if err != nil {
		if errors.Is(err, codecs.ErrFormat) || errors.Is(err, codecs.ErrUnsupportedFormat) ||
			errors.Is(err, codecs.ErrEncodeOnly) {
			return withCode(exitValidation, err)
		}
		return withCode(exitService, err)
	}
	if err := os.WriteFile(opts.output, cleaned.Bytes(), 0o644); err != nil {
		return withCode(exitWrite, errors.Wrap(err, "write output"))
	}
	return writeJSONLine(out, map[string]any{
		"output":            opts.output,
		"total":             report.Total,
		"accepted":          report.Accepted,
		"skipped_duplicate": report.SkippedDuplicate,
		"skipped_invalid":   report.SkippedInvalid,
	})
}
