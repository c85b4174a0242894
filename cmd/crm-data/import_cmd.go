package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/internal/importer"
	catalogservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/catalog/services"
	coreservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/core/services"
	fieldservices "github.com/urnevurnev-lab/ambassador-crm-sub000/modules/field/services"
)

type importCmdOptions struct {
	file       string
	profile    string
	delimiter  string
	datePolicy string
	apply      bool
}

func newImportCmd() *cobra.Command {
	var opts importCmdOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a distributor spreadsheet (CSV or XLSX)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Input file (default: first existing candidate from IMPORT_INPUT_CANDIDATES)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "Profile YAML path (default: built-in profile, or IMPORT_PROFILE_PATH)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "CSV delimiter override, single character")
	cmd.Flags().StringVar(&opts.datePolicy, "date-policy", "", "Date policy override: strict or lenient")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Write to the database (default is dry-run)")

	return cmd
}

func runImport(ctx context.Context, opts importCmdOptions) error {
	ctx, handles, cleanup, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	path, err := resolveInputFile(opts.file, handles.conf.Importer.CandidatePaths())
	if err != nil {
		return err
	}

	profile, err := resolveProfile(opts, handles)
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(path, profile)
	if err != nil {
		return err
	}
	defer closeSource()

	app := handles.app
	users := app.Service(coreservices.UserService{}).(*coreservices.UserService)
	facilities := app.Service(fieldservices.FacilityService{}).(*fieldservices.FacilityService)
	products := app.Service(catalogservices.ProductService{}).(*catalogservices.ProductService)
	visits := app.Service(fieldservices.VisitService{}).(*fieldservices.VisitService)
	mustList := app.Service(fieldservices.MustListService{}).(*fieldservices.MustListService)

	resolver := importer.NewResolver(users, facilities, products)
	run := importer.NewImporter(resolver, visits, mustList, handles.conf.Logger())
	run.DryRun = !opts.apply

	summary, err := run.Run(ctx, source, profile)
	if err != nil {
		return withCode(exitValidation, fmt.Errorf("import %s: %w", path, err))
	}
	return writeJSONLine(struct {
		File   string `json:"file"`
		DryRun bool   `json:"dry_run"`
		importer.Summary
	}{File: path, DryRun: run.DryRun, Summary: summary})
}

func resolveInputFile(flagValue string, candidates []string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		if _, err := os.Stat(flagValue); err != nil {
			return "", withCode(exitUsage, fmt.Errorf("input file %s: %w", flagValue, err))
		}
		return flagValue, nil
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", withCode(exitUsage, fmt.Errorf("no input file: pass --file or place one at %s", strings.Join(candidates, ", ")))
}

func resolveProfile(opts importCmdOptions, handles *appHandles) (*importer.Profile, error) {
	profilePath := opts.profile
	if profilePath == "" {
		profilePath = handles.conf.Importer.ProfilePath
	}

	var (
		profile *importer.Profile
		err     error
	)
	if profilePath != "" {
		profile, err = importer.LoadProfile(profilePath)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
	} else {
		profile = importer.DefaultProfile()
		profile.DatePolicy = handles.conf.Importer.DatePolicy
		profile.SwapThreshold = handles.conf.Importer.SwapThreshold
	}

	if opts.delimiter != "" {
		if len([]rune(opts.delimiter)) != 1 {
			return nil, withCode(exitUsage, fmt.Errorf("invalid --delimiter %q: expected a single character", opts.delimiter))
		}
		profile.Delimiter = opts.delimiter
	}
	if opts.datePolicy != "" {
		profile.DatePolicy = opts.datePolicy
	}
	if err := profile.Validate(); err != nil {
		return nil, withCode(exitUsage, err)
	}
	return profile, nil
}

func openSource(path string, profile *importer.Profile) (importer.Source, func(), error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.NewXLSXSource(path), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, withCode(exitUsage, fmt.Errorf("open %s: %w", path, err))
	}
	return importer.NewCSVSource(f, profile.DelimiterRune()), func() { _ = f.Close() }, nil
}
