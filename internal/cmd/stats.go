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

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print descriptive statistics of the order data",
	Long: `Print basic descriptive statistics over the loaded orders: the mean
number of SKUs purchased per user, the most expensive order with its line
items, and the most orders placed by a single user.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	mean, err := store.MeanSKUsPerUser()
	if err != nil {
		return err
	}
	fmt.Printf("Mean SKUs purchased per user: %.4f\n", mean)

	max, err := store.MaxOrdersPerUser()
	if err != nil {
		return err
	}
	fmt.Printf("Most orders placed by a user: %d\n", max)

	order, err := store.MostExpensiveOrder()
	if err != nil {
		return err
	}
	if order == nil {
		fmt.Println("No orders loaded.")
		return nil
	}

	fmt.Printf("\nMost expensive order: %s (user %s, value %.2f)\n", order.OrderID, order.UserID, order.Value)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "sku_ID\tquantity\tfinal_unit_price\tvalue")
	for _, line := range order.Lines {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", line.SkuID, line.Quantity, line.UnitPrice, line.Value)
	}
	w.Flush()

	return nil
}
