package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cows",
		Short: "GraphQL server for the cow barn",
		Long: `cows serves the barn schema over HTTP with a GraphiQL playground
and Prometheus metrics, or prints the schema's introspection result.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./party.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSchemaCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
