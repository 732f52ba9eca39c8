package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/snapshot"
	"pnl-engine/pkg/idgen"
	"pnl-engine/pkg/ptdecimal"
)

var (
	recordDir        string
	recordInstrument string
	recordBook       string
	recordQuantity   string
	recordPrice      string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Durably append one trade to a WAL directory through the event bus and print the resulting state.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		policy, err := parsePolicy(policyFlag)
		requireNoError(err)

		qty, err := ptdecimal.NewFromString(recordQuantity, ptdecimal.Quantity)
		requireNoError(err)
		price, err := ptdecimal.NewFromString(recordPrice, ptdecimal.Money)
		requireNoError(err)

		policyOf := func(instrument, book string) domain.MatchingPolicy { return policy }

		store, err := snapshot.NewEventStore(recordDir)
		requireNoError(err)
		defer store.Close()

		mgr, err := snapshot.NewSnapshotManager(recordDir, 10)
		requireNoError(err)

		state, err := snapshot.NewReplayEngine(store, mgr, policyOf).Replay()
		requireNoError(err)

		bus := snapshot.NewEventBus(store, state)

		trade := domain.NewMarketTrade(idgen.TradeID(), time.Now(), recordInstrument, recordBook, qty, price)
		pnlState, err := bus.PublishTrade(trade)
		requireNoError(err)

		if jsonOutput {
			printStripJSON(pnlState)
			return
		}
		fmt.Fprintf(os.Stdout, "trade %s recorded: quantity=%s cost=%s realized=%s unmatched=%d matched=%d\n",
			trade.TradeID, pnlState.Quantity, pnlState.Cost, pnlState.Realized, len(pnlState.Unmatched), len(pnlState.Matched))
	},
}

func init() {
	recordCmd.Flags().StringVar(&recordDir, "dir", ".", "WAL/snapshot directory to append to")
	recordCmd.Flags().StringVar(&recordInstrument, "instrument", "DEMO", "instrument symbol for the recorded trade")
	recordCmd.Flags().StringVar(&recordBook, "book", "default", "book for the recorded trade")
	recordCmd.Flags().StringVar(&recordQuantity, "quantity", "1", "signed trade quantity")
	recordCmd.Flags().StringVar(&recordPrice, "price", "10.00", "trade execution price")
}
