package cmd

import (
	"fmt"

	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/matthieukhl/ordersight/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query results over HTTP",
	Long: `Start a read-only HTTP API over the populated store. Endpoints
mirror the analytical queries: /api/segments, /api/top-orders,
/api/order-values, /api/funnel, and /api/funnel/chart for a hosted chart
URL.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	srv := server.NewServer(db, cfg.Analysis.FunnelWindowHours)

	fmt.Printf("🚀 Serving query results on %s ...\n", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
