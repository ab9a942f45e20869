package cmd

import (
	"fmt"

	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/matthieukhl/ordersight/internal/ingest"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the store from the raw extracts",
	Long: `Delete any existing store, create the orders/delivery/clicks/users
schema, and bulk-load the four extracts.

Rows violating a primary key keep their first occurrence only; click rows
with an unknown user are dropped. Any constraint violation aborts the
build.`,
	RunE: buildStore,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func buildStore(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("🔨 Rebuilding store (%s) ...\n", storeLocation(&cfg.Store))

	db, err := database.Rebuild(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to rebuild store: %w", err)
	}
	defer db.Close()

	loader := ingest.NewLoader(db)
	report, err := loader.LoadAll(&cfg.Extracts)
	if err != nil {
		return err
	}

	fmt.Printf("\n📦 Store built (run %s):\n", report.RunID)
	for _, table := range report.Tables {
		fmt.Printf("   %-10s %8d rows (%d dropped) from %s\n", table.Table, table.Rows, table.RowsDropped, table.SourceFile)
	}
	fmt.Printf("\n💡 Use 'ordersight query' to run the analytical queries\n")

	return nil
}

func storeLocation(cfg *config.StoreConfig) string {
	if cfg.Driver == database.DriverMySQL {
		return "mysql"
	}
	return cfg.Path
}
