package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pnl-engine/internal/domain"
	"pnl-engine/internal/memory"
	"pnl-engine/internal/snapshot"
)

var replayDir string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild every stream's state from a WAL directory and print a summary.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		policy, err := parsePolicy(policyFlag)
		requireNoError(err)

		policyOf := func(instrument, book string) domain.MatchingPolicy { return policy }

		store, err := snapshot.NewEventStore(replayDir)
		requireNoError(err)
		defer store.Close()

		mgr, err := snapshot.NewSnapshotManager(replayDir, 10)
		requireNoError(err)

		replayEngine := snapshot.NewReplayEngine(store, mgr, policyOf)
		state, err := replayEngine.Replay()
		requireNoError(err)

		for _, key := range state.Streams() {
			instrument, book := memory.SplitStreamKey(key)
			s := state.Registry.StreamStates()[key]
			fmt.Fprintf(os.Stdout, "%s/%s: quantity=%s cost=%s realized=%s unmatched=%d matched=%d\n",
				instrument, book, s.Quantity, s.Cost, s.Realized, len(s.Unmatched), len(s.Matched))
		}
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayDir, "dir", ".", "WAL/snapshot directory to replay")
}
