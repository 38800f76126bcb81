package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arrowkit/arrowkit/src/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "arrowkit-query",
		Short: "Load a CSV snapshot and run an ad-hoc query against it",
	}
	root.PersistentFlags().String("config", "", "path to a config file (see engine.Config for fields)")
	viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newCountCmd())
	root.AddCommand(newSumCmd())
	return root
}

func loadConfig() engine.Config {
	cfg := engine.DefaultConfig()
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err == nil {
			if v := viper.GetInt("chunkSize"); v > 0 {
				cfg.ChunkSize = v
			}
			if v := viper.GetInt("planCacheCapacity"); v > 0 {
				cfg.PlanCacheCapacity = v
			}
			if viper.IsSet("strictPredicate") {
				cfg.StrictPredicate = viper.GetBool("strictPredicate")
			}
		}
	}
	return cfg
}

func newCountCmd() *cobra.Command {
	var column string
	var threshold float64
	cmd := &cobra.Command{
		Use:   "count <csv-file>",
		Short: "Count rows where the given numeric column exceeds threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(args[0], column, threshold, loadConfig())
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "numeric column to filter on")
	cmd.Flags().Float64Var(&threshold, "gt", 0, "keep rows where column > this value")
	cmd.MarkFlagRequired("column")
	return cmd
}

func newSumCmd() *cobra.Command {
	var column string
	cmd := &cobra.Command{
		Use:   "sum <csv-file>",
		Short: "Sum a numeric column across every row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSum(args[0], column, loadConfig())
		},
	}
	cmd.Flags().StringVar(&column, "column", "", "numeric column to sum")
	cmd.MarkFlagRequired("column")
	return cmd
}
