package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
)

type exportCmdOptions struct {
	output string
	report string
}

func newExportCmd() *cobra.Command {
	var opts exportCmdOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a report workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.output, "output", "./visits.xlsx", "Output file path")
	cmd.Flags().StringVar(&opts.report, "report", "visits", "Report to export: visits or compliance")

	return cmd
}

func runExport(ctx context.Context, opts exportCmdOptions) error {
	ctx, handles, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	reports := handles.app.Service(fieldservices.ReportService{}).(*fieldservices.ReportService)

	var workbook []byte
	switch opts.report {
	case "visits":
		workbook, err = reports.VisitReport(ctx)
	case "compliance":
		workbook, err = reports.ComplianceReport(ctx)
	default:
		return withCode(exitUsage, fmt.Errorf("unknown --report %q (expected visits|compliance)", opts.report))
	}
	if err != nil {
		return withCode(exitDB, fmt.Errorf("build %s report: %w", opts.report, err))
	}

	out := opts.output
	if strings.TrimSpace(out) == "" {
		return withCode(exitUsage, fmt.Errorf("--output is required"))
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return withCode(exitDBWrite, fmt.Errorf("mkdir %s: %w", dir, err))
		}
	}
	if err := os.WriteFile(out, workbook, 0o644); err != nil {
		return withCode(exitDBWrite, fmt.Errorf("write %s: %w", out, err))
	}
	return writeJSONLine(struct {
		Report string `json:"report"`
		Output string `json:"output"`
		Bytes  int    `json:"bytes"`
	}{Report: opts.report, Output: out, Bytes: len(workbook)})
}
