package client

import (
	"encoding/json"
	"fmt"

	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
	"github.com/spf13/cobra"
)

// NewSeqCommand constructs the `seq` command group.
func NewSeqCommand() *cobra.Command {
	seqCmd := &cobra.Command{
		Use:   "seq",
		Short: "Emit ordered ids derived from one seed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seedStr, _ := cmd.Flags().GetString("seed")
			n, _ := cmd.Flags().GetInt("count")

			if n <= 0 {
				return fmt.Errorf("count must be positive, got %d", n)
			}
			seed, err := seedOrNew(seedStr)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			seq := ksuid.NewSequence(seed)
			for i := 0; i < n; i++ {
				id, err := seq.Next()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, id.String())
			}
			return nil
		},
	}
	seqCmd.Flags().String("seed", "", "Seed id (random when empty)")
	seqCmd.Flags().IntP("count", "n", 1, "How many ids to emit")
	seqCmd.AddCommand(newSeqBoundsCommand())
	return seqCmd
}

// newSeqBoundsCommand constructs the `seq bounds` subcommand.
func newSeqBoundsCommand() *cobra.Command {
	boundsCmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the id range a seed can emit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seedStr, _ := cmd.Flags().GetString("seed")
			emitted, _ := cmd.Flags().GetInt("emitted")

			if seedStr == "" {
				return fmt.Errorf("seed is required")
			}
			if emitted < 0 {
				return fmt.Errorf("emitted cannot be negative, got %d", emitted)
			}
			seed, err := ksuid.Parse(seedStr)
			if err != nil {
				return fmt.Errorf("parse seed: %w", err)
			}
			seq := ksuid.NewSequence(seed)
			for i := 0; i < emitted; i++ {
				if _, err := seq.Next(); err != nil {
					return err
				}
			}
			min, max := seq.Bounds()
			var data struct {
				Seed string `json:"seed"`
				Min  string `json:"min"`
				Max  string `json:"max"`
			}
			data.Seed = seed.String()
			data.Min = min.String()
			data.Max = max.String()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}
	boundsCmd.Flags().String("seed", "", "Seed id")
	boundsCmd.Flags().Int("emitted", 0, "Treat the first N ids as already emitted")
	return boundsCmd
}

func seedOrNew(s string) (ksuid.KSUID, error) {
	if s == "" {
		return ksuid.New()
	}
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("parse seed: %w", err)
	}
	return id, nil
}
