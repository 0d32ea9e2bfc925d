package main

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/hotelstaff/roster/modules/roster/services/repair"
)

type repairOptions struct {
	clientOptions
	fetchTimeout time.Duration
	writeTimeout time.Duration
	remote       bool
	verbose      bool
}

func newRepairCmd() *cobra.Command {
	var opts repairOptions

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Relink vacation requests whose staff reference no longer resolves",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().DurationVar(&opts.fetchTimeout, "fetch-timeout", repair.DefaultFetchTimeout, "Deadline for loading staff and vacations")
	cmd.Flags().DurationVar(&opts.writeTimeout, "write-timeout", repair.DefaultWriteTimeout, "Deadline for each vacation update")
	cmd.Flags().BoolVar(&opts.remote, "remote", false, "Ask the server to run the pass instead of running it here")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Also print records that needed no change")
	return cmd
}

func runRepair(ctx context.Context, out io.Writer, opts repairOptions) error {
	if opts.fetchTimeout <= 0 || opts.writeTimeout <= 0 {
		return withCode(exitUsage, errors.New("timeouts must be positive"))
	}
	client, err := opts.client()
	if err != nil {
		return err
	}

	var res *repair.Result
	if opts.remote {
		run, err := client.Repair(ctx)
		if err != nil {
			return classify(err)
		}
		res = run.Result
		for _, o := range res.Outcomes {
			if err := writeOutcome(out, o, opts.verbose); err != nil {
				return err
			}
		}
	} else {
		var writeErr error
		engine := repair.New(client.Staff(), client.Vacations(), repair.Config{
			FetchTimeout: opts.fetchTimeout,
			WriteTimeout: opts.writeTimeout,
		}, repair.WithObserver(func(o repair.Outcome) {
			if writeErr == nil {
				writeErr = writeOutcome(out, o, opts.verbose)
			}
		}))
		res, err = engine.Run(ctx)
		if err != nil {
			return withCode(exitService, err)
		}
		if writeErr != nil {
			return writeErr
		}
	}

	if err := writeJSONLine(out, map[string]any{
		"checked":       res.Checked,
		"ok":            res.OK,
		"fixed":         res.Fixed,
		"unrecoverable": res.Unrecoverable,
		"failed":        res.Failed,
		"skipped":       res.Skipped,
		"interrupted":   res.Interrupted,
	}); err != nil {
		return err
	}
	switch {
	case res.Failed > 0:
		return withCode(exitWrite, errors.Errorf("%d vacation updates failed", res.Failed))
	case res.Interrupted:
		return withCode(exitService, errors.New("repair interrupted"))
	}
	return nil
}

func writeOutcome(out io.Writer, o repair.Outcome, verbose bool) error {
	if o.Status == repair.StatusOK && !verbose {
		return nil
	}
	line := map[string]any{
		"vacation_id": o.VacationID,
		"status":      o.Status,
		"staff_id":    o.StaffID,
		"staff_name":  o.StaffName,
	}
	if o.NewStaffID != 0 {
		line["new_staff_id"] = o.NewStaffID
	}
	if o.Candidates > 1 {
		line["candidates"] = o.Candidates
	}
	if o.Error != "" {
		line["error"] = o.Error
	}
	return writeJSONLine(out, line)
}
