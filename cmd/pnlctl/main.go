// Command pnlctl is a small operational CLI around the P&L engine: run
// a scripted sequence of trades through an in-memory stream, replay a
// WAL directory back to a state, and print the resulting strip.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	policyFlag string
	jsonOutput bool
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pnlctl",
	Short: "pnlctl drives the P&L matching engine from the command line.",
	Long:  "pnlctl drives the P&L matching engine from the command line: replay trade tapes, inspect strips, and manage WAL snapshots.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&policyFlag, "policy", "p", "FIFO", "matching policy: FIFO, LIFO, BEST_PRICE, WORST_PRICE")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "emit JSON instead of a plain-text summary")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(recordCmd)
}

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
