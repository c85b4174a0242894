package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
)

func newRecomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-mustlist",
		Short: "Rebuild every facility's required-products baseline from its latest visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecompute(cmd.Context())
		},
	}
}

func runRecompute(ctx context.Context) error {
	ctx, handles, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	mustList := handles.app.Service(fieldservices.MustListService{}).(*fieldservices.MustListService)
	summary, err := mustList.Recompute(ctx)
	if err != nil {
		return withCode(exitDBWrite, fmt.Errorf("recompute must-list: %w", err))
	}
	return writeJSONLine(summary)
}
