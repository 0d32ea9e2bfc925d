package main

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	clientOptions
	format  string
	output  string
	filters map[string]*string
}

var exportFilters = []string{"q", "hotel", "department", "status", "visaType"}

func newExportCmd() *cobra.Command {
	opts := exportOptions{filters: map[string]*string{}}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the staff collection as json, xlsx or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json|xlsx|pdf")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file, or a directory to use the server's filename (required)")
	for _, name := range exportFilters {
		var v string
		opts.filters[name] = &v
		cmd.Flags().StringVar(&v, name, "", "Filter by "+name)
	}
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExport(ctx context.Context, out io.Writer, opts exportOptions) error {
	if strings.TrimSpace(opts.output) == "" {
		return withCode(exitUsage, errors.New("--output is required"))
	}
	client, err := opts.client()
	if err != nil {
		return err
	}

	filters := url.Values{}
	for name, v := range opts.filters {
		if s := strings.TrimSpace(*v); s != "" {
			filters.Set(name, s)
		}
	}
	filename, body, err := client.ExportStaff(ctx, opts.format, filters)
	if err != nil {
		return classify(err)
	}

	path := opts.output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, filepath.Base(filename))
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return withCode(exitWrite, errors.Wrap(err, "write export"))
	}
	return writeJSONLine(out, map[string]any{
		"file":   path,
		"format": opts.format,
		"bytes":  len(body),
	})
}
