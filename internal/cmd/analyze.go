package cmd

import (
	"fmt"

	"github.com/matthieukhl/ordersight/internal/analyze"
	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/matthieukhl/ordersight/internal/ingest"
	"github.com/matthieukhl/ordersight/internal/queries"
	"github.com/matthieukhl/ordersight/internal/report"
	"github.com/spf13/cobra"
)

var skipPlots bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fit the delivery-time regressions and render charts",
	Long: `Build the delivery-time dataset from the raw extracts (orders with
the configured promise code, joined to their last-arriving package,
delivered within the configured bound), fit a baseline OLS of delivery
time on order time of day plus a piecewise model allowing the slope and
intercept to change at the break hour, print both coefficient tables,
and render the scatter/fit and funnel-distribution charts.`,
	RunE: runAnalysis,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&skipPlots, "no-plots", false, "Skip rendering chart files")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("📈 Building the delivery-time dataset ...")

	orders, err := ingest.ReadOrders(cfg.Extracts.Orders)
	if err != nil {
		return err
	}
	deliveries, err := ingest.ReadDeliveries(cfg.Extracts.Delivery)
	if err != nil {
		return err
	}

	observations := analyze.BuildDeliveryDataset(orders, deliveries, analyze.DatasetParams{
		PromiseCode:      cfg.Analysis.PromiseCode,
		MaxDeliveryHours: cfg.Analysis.MaxDeliveryHours,
	})
	if len(observations) == 0 {
		return fmt.Errorf("no orders with promise code %q delivered within %.0f hours", cfg.Analysis.PromiseCode, cfg.Analysis.MaxDeliveryHours)
	}

	summary, err := analyze.Describe(observations)
	if err != nil {
		return err
	}
	fmt.Printf("   %d orders; delivery time mean %.2fh, median %.2fh, sd %.2fh, p90 %.2fh\n\n",
		summary.Count, summary.Mean, summary.Median, summary.StdDev, summary.P90)

	xs := analyze.TimesOfDay(observations)
	ys := analyze.DeliveryTimes(observations)

	baseline, err := analyze.FitOLS(analyze.BaselineDesign(), xs, ys)
	if err != nil {
		return fmt.Errorf("failed to fit baseline model: %w", err)
	}
	fmt.Println(baseline.Summary())

	discontinuity, err := analyze.FitOLS(analyze.DiscontinuityDesign(cfg.Analysis.BreakHour), xs, ys)
	if err != nil {
		return fmt.Errorf("failed to fit discontinuity model: %w", err)
	}
	fmt.Println(discontinuity.Summary())

	if skipPlots {
		return nil
	}

	path, err := report.SaveDeliveryScatter(observations, discontinuity, cfg.Output.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("🖼  Wrote %s\n", path)

	// The funnel chart needs the store; skip it quietly when none exists.
	db, err := database.Open(&cfg.Store)
	if err != nil {
		fmt.Printf("⚠️  Store unavailable, skipping funnel chart: %v\n", err)
		return nil
	}
	defer db.Close()

	dist, err := queries.NewStore(db).Funnel(cfg.Analysis.FunnelWindowHours)
	if err != nil {
		return err
	}
	path, err = report.SaveFunnelDistribution(dist, cfg.Output.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("🖼  Wrote %s\n", path)

	return nil
}
