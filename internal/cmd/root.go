package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ordersight",
	Short: "Ordersight - order, delivery, and click analytics",
	Long: `Ordersight rebuilds a relational store from JD-style e-commerce
extracts (orders, deliveries, clicks, users) and analyzes it: segment
counts, order valuations, click-to-fulfilment funnel distributions,
delivery-time regressions, and PLUS-membership imputation.

The store is rebuilt from scratch on every build; each analysis command
runs to completion as a single batch job.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
