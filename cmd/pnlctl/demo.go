package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/engine"
	"pnl-engine/pkg/idgen"
	"pnl-engine/pkg/ptdecimal"
)

var (
	demoInstrument string
	demoBook       string
	demoMark       string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a small scripted trade tape through an in-memory engine and print the resulting strip.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		policy, err := parsePolicy(policyFlag)
		requireNoError(err)

		e := engine.New(policy)

		tape := []struct {
			quantity string
			price    string
		}{
			{"100", "10.00"},
			{"-40", "11.50"},
			{"-80", "9.75"},
		}

		for _, leg := range tape {
			qty, err := ptdecimal.NewFromString(leg.quantity, ptdecimal.Quantity)
			requireNoError(err)
			price, err := ptdecimal.NewFromString(leg.price, ptdecimal.Money)
			requireNoError(err)

			trade := domain.NewMarketTrade(idgen.TradeID(), time.Now(), demoInstrument, demoBook, qty, price)
			state, tradeStrip, err := e.AddTrade(trade)
			requireNoError(err)
			if !jsonOutput {
				fmt.Fprintf(os.Stdout, "trade %s qty=%s price=%s -> quantity=%s realized=%s strip=%s\n",
					trade.TradeID, leg.quantity, leg.price, state.Quantity, state.Realized, tradeStrip)
			}
		}

		mark, err := ptdecimal.NewFromString(demoMark, ptdecimal.Money)
		requireNoError(err)
		strip := e.Strip(mark)

		if jsonOutput {
			printStripJSON(strip)
			return
		}
		fmt.Fprintln(os.Stdout, strip)
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoInstrument, "instrument", "DEMO", "instrument symbol for the scripted tape")
	demoCmd.Flags().StringVar(&demoBook, "book", "default", "book for the scripted tape")
	demoCmd.Flags().StringVar(&demoMark, "mark", "10.25", "mark price to derive the final strip at")
}

func printStripJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	requireNoError(enc.Encode(v))
}
