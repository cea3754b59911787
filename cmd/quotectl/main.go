// quotectl is the operator CLI for the countertop quote service.
//
// Usage:
//
//	quotectl estimate --area 30 --material "calacatta quartz" [options]
//	quotectl pricing show
//	quotectl catalog import --file countertop_images.csv
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"countertop_quote_backend/internal/countertops/repository"
	countertopservice "countertop_quote_backend/internal/countertops/service"
	"countertop_quote_backend/internal/estimates/domain"
	"countertop_quote_backend/internal/estimates/transport"
	"countertop_quote_backend/internal/pricing"
	"countertop_quote_backend/platform/config"
	"countertop_quote_backend/platform/db"
	"countertop_quote_backend/platform/logger"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "quotectl",
		Usage:   "Countertop quote operator tools",
		Version: version,
		Commands: []*cli.Command{
			estimateCommand(),
			pricingCommand(),
			catalogCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// ESTIMATE COMMAND
// =============================================================================

func estimateCommand() *cli.Command {
	return &cli.Command{
		Name:  "estimate",
		Usage: "Compute an estimate against the configured pricing sheet",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "area", Aliases: []string{"a"}, Usage: "Countertop area in square feet", Required: true},
			&cli.StringFlag{Name: "material", Aliases: []string{"m"}, Usage: "Material or color name"},
			&cli.BoolFlag{Name: "demolition", Usage: "Remove existing countertops first"},
			&cli.StringFlag{Name: "edge", Value: "standard", Usage: "Edge detail tier (standard, premium, custom)"},
			&cli.StringFlag{Name: "sink", Usage: "Add one sink cut-out of this tier (standard, premium)"},
			&cli.StringFlag{Name: "cooktop", Usage: "Add one cooktop cut-out of this tier (standard, premium)"},
			&cli.BoolFlag{Name: "backsplash", Usage: "Include a backsplash"},
			&cli.Float64Flag{Name: "backsplash-rate", Usage: "Backsplash rate per square foot (0 uses the default)"},
			&cli.StringFlag{Name: "job-type", Value: "install", Usage: "Job type (install, slab_only, replacement, repair)"},
			&cli.StringFlag{Name: "waste", Value: "flat", Usage: "Waste strategy (flat, tiered)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json)"},
		},
		Action: runEstimate,
	}
}

func runEstimate(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	policy, err := domain.LoadPolicy(cfg.GetPricingPolicyFile())
	if err != nil {
		return err
	}

	req := domain.Request{
		AreaUnits:           c.Float64("area"),
		MaterialKey:         c.String("material"),
		DemolitionRequired:  c.Bool("demolition"),
		EdgeDetailTier:      domain.EdgeTier(c.String("edge")),
		BacksplashRequested: c.Bool("backsplash"),
		BacksplashRate:      c.Float64("backsplash-rate"),
		JobType:             domain.JobType(c.String("job-type")),
		WasteStrategy:       domain.WasteStrategy(c.String("waste")),
	}
	if tier := c.String("sink"); tier != "" {
		req.Fixtures = append(req.Fixtures, domain.Fixture{Kind: domain.FixtureSink, Tier: domain.FixtureTier(tier), Quantity: 1})
	}
	if tier := c.String("cooktop"); tier != "" {
		req.Fixtures = append(req.Fixtures, domain.Fixture{Kind: domain.FixtureCooktop, Tier: domain.FixtureTier(tier), Quantity: 1})
	}

	normalized, err := req.Normalize()
	if err != nil {
		return err
	}

	snapshot := pricing.NewProviderFromConfig(cfg, logger.New(cfg.Env)).Refresh(c.Context)
	result, err := domain.Compute(normalized, snapshot, policy)
	if err != nil {
		return err
	}

	breakdown := transport.NewBreakdown(result)
	if c.String("format") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(breakdown)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Material\t%s (matched: %t)\n", breakdown.MaterialKey, breakdown.MaterialMatched)
	fmt.Fprintf(w, "Unit cost\t$%s/sq ft\n", breakdown.UnitCost)
	fmt.Fprintf(w, "Waste\t%s x %s\n", breakdown.WasteStrategy, breakdown.WasteFactor)
	fmt.Fprintf(w, "Effective area\t%s sq ft\n", breakdown.EffectiveArea)
	fmt.Fprintf(w, "Slabs\t%d\n", breakdown.SlabCount)
	fmt.Fprintf(w, "Material cost\t$%s\n", breakdown.MaterialCost)
	fmt.Fprintf(w, "Fixture cost\t$%s\n", breakdown.FixtureCost)
	fmt.Fprintf(w, "Backsplash cost\t$%s\n", breakdown.BacksplashCost)
	fmt.Fprintf(w, "Labor cost\t$%s\n", breakdown.LaborCost)
	fmt.Fprintf(w, "Total\t$%s\n", breakdown.TotalCost)
	fmt.Fprintf(w, "Price list\t%s (fallback: %t)\n", snapshot.Source(), snapshot.Fallback())
	return w.Flush()
}

// =============================================================================
// PRICING COMMAND
// =============================================================================

func pricingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pricing",
		Usage: "Inspect the pricing sheet",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Fetch and print the parsed pricing sheet",
				Action: runPricingShow,
			},
		},
	}
}

func runPricingShow(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	snapshot := pricing.NewProviderFromConfig(cfg, logger.New(cfg.Env)).Refresh(c.Context)

	fmt.Printf("Source: %s (fallback: %t, fetched %s)\n\n", snapshot.Source(), snapshot.Fallback(), snapshot.FetchedAt().Format("2006-01-02 15:04:05"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tFAMILY\tCOST/SQ FT\tSLAB SQ FT")
	for _, entry := range snapshot.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.Key, entry.Family, entry.CostPerArea.StringFixed(2), entry.UnitsPerSlab.String())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if issues := snapshot.Issues(); len(issues) > 0 {
		fmt.Printf("\n%d row issue(s):\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  row %d %q %s: %s\n", issue.Row, issue.Key, issue.Column, issue.Problem)
		}
	}
	return nil
}

// =============================================================================
// CATALOG COMMAND
// =============================================================================

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the countertop product catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Replace the catalog with the rows of a scraped CSV export",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Path to the CSV export", Required: true},
				},
				Action: runCatalogImport,
			},
		},
	}
}

func runCatalogImport(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.IsDatabaseEnabled() {
		return fmt.Errorf("DATABASE_URL is required for catalog import")
	}
	log := logger.New(cfg.Env)

	pool, err := db.NewPool(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	if err := db.RunMigrations(c.Context, pool); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	file, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer file.Close()

	svc := countertopservice.New(repository.New(pool), log)
	result, err := svc.ImportCSV(c.Context, file)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d countertops (%d rows skipped)\n", result.Imported, result.Skipped)
	return nil
}
