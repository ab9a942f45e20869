package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/matthieukhl/ordersight/internal/queries"
	"github.com/spf13/cobra"
)

var topOrderLimit int

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run the fixed analytical queries against the store",
	Long: `Run the four analytical queries against the populated store:

- user counts by PLUS segment
- the most valuable orders
- average order value by PLUS segment
- the click-to-order and click-to-ship hour distributions`,
	RunE: runQueries,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().IntVar(&topOrderLimit, "top", 5, "Number of top orders to show")
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	store := queries.NewStore(db)

	if info, err := store.BuildInfo(); err == nil && len(info) > 0 {
		fmt.Printf("🗄  Store built %s (run %s)\n\n", info[0].BuiltAt, info[0].RunID)
	}

	fmt.Println("Users by PLUS segment:")
	counts, err := store.SegmentCounts()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "plus\tnum_users")
	for _, c := range counts {
		fmt.Fprintf(w, "%d\t%d\n", c.Plus, c.Users)
	}
	w.Flush()

	fmt.Printf("\nTop %d orders by value:\n", topOrderLimit)
	top, err := store.TopOrdersByValue(topOrderLimit)
	if err != nil {
		return err
	}
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "order_value\tuser_ID\torder_ID")
	for _, o := range top {
		fmt.Fprintf(w, "%.2f\t%s\t%s\n", o.Value, o.UserID, o.OrderID)
	}
	w.Flush()

	fmt.Println("\nAverage order value by PLUS segment:")
	averages, err := store.AverageOrderValueBySegment()
	if err != nil {
		return err
	}
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "plus\taverage_order_value")
	for _, a := range averages {
		fmt.Fprintf(w, "%d\t%.2f\n", a.Plus, a.AverageValue)
	}
	w.Flush()

	fmt.Printf("\nFunnel hour distributions (0-%d hours):\n", cfg.Analysis.FunnelWindowHours)
	dist, err := store.Funnel(cfg.Analysis.FunnelWindowHours)
	if err != nil {
		return err
	}
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "hours\tclick_to_order\tclick_to_ship")
	for i, hour := range dist.Hours {
		fmt.Fprintf(w, "%d\t%d\t%d\n", hour, dist.ClickToOrder[i], dist.ClickToShip[i])
	}
	w.Flush()

	return nil
}
