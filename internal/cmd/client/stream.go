// Package client contains Cobra CLI commands for ksuid.
package client

import (
	"encoding/json"
	"fmt"

	"github.com/malbaugh/ksuid-ts/internal/runtime"
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewStreamCommand constructs the `stream` command group and subcommands.
func NewStreamCommand(baseURL BaseURLFunc) *cobra.Command {
	streamCmd := &cobra.Command{Use: "stream", Short: "Durable stream operations"}

	streamCmd.AddCommand(
		newStreamNextCommand(baseURL),
		newStreamBoundsCommand(baseURL),
		newStreamListCommand(baseURL),
	)

	return streamCmd
}

// newStreamNextCommand constructs the `stream next` subcommand.
func newStreamNextCommand(baseURL BaseURLFunc) *cobra.Command {
	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Mint the next ids from a named stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			n, _ := cmd.Flags().GetInt("count")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			if name == "" {
				return fmt.Errorf("stream name is required")
			}
			if n <= 0 {
				return fmt.Errorf("count must be positive, got %d", n)
			}

			out := cmd.OutOrStdout()
			if dataDir != "" {
				return withLocalRuntime(dataDir, func(rt *runtime.Runtime) error {
					ids, err := rt.Ledger().NextN(name, n)
					if err != nil {
						return err
					}
					for _, id := range ids {
						_, _ = fmt.Fprintln(out, id.String())
					}
					return nil
				})
			}

			var data struct {
				Stream string   `json:"stream"`
				IDs    []string `json:"ids"`
			}
			req := map[string]any{"stream": name, "count": n}
			if err := httpPostJSON(baseURL()+"/v1/streams/next", req, &data); err != nil {
				return err
			}
			for _, id := range data.IDs {
				_, _ = fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	nextCmd.Flags().String("name", "", "Stream name")
	nextCmd.Flags().IntP("count", "n", 1, "How many ids to mint")
	nextCmd.Flags().String("data-dir", "", "Data directory of a stopped server (opens the store directly)")
	return nextCmd
}

// newStreamBoundsCommand constructs the `stream bounds` subcommand.
func newStreamBoundsCommand(baseURL BaseURLFunc) *cobra.Command {
	boundsCmd := &cobra.Command{
		Use:   "bounds",
		Short: "Show a stream's state and the id range it can still emit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			if name == "" {
				return fmt.Errorf("stream name is required")
			}

			var data struct {
				Name        string `json:"name"`
				Seed        string `json:"seed"`
				Count       uint32 `json:"count"`
				Rotations   uint64 `json:"rotations"`
				CreatedAtMs int64  `json:"createdAtMs"`
				Min         string `json:"min"`
				Max         string `json:"max"`
			}
			if dataDir != "" {
				err := withLocalRuntime(dataDir, func(rt *runtime.Runtime) error {
					info, err := rt.Ledger().Stream(name)
					if err != nil {
						return err
					}
					min, max, err := rt.Ledger().Bounds(name)
					if err != nil {
						return err
					}
					data.Name = info.Name
					data.Seed = info.Seed.String()
					data.Count = info.Count
					data.Rotations = info.Rotations
					data.CreatedAtMs = info.CreatedAt.UnixMilli()
					data.Min = min.String()
					data.Max = max.String()
					return nil
				})
				if err != nil {
					return err
				}
			} else if err := httpGetJSON(baseURL()+"/v1/streams/"+name, &data); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}
	boundsCmd.Flags().String("name", "", "Stream name")
	boundsCmd.Flags().String("data-dir", "", "Data directory of a stopped server (opens the store directly)")
	return boundsCmd
}

// newStreamListCommand constructs the `stream list` subcommand.
func newStreamListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stream names",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")

			out := cmd.OutOrStdout()
			if dataDir != "" {
				return withLocalRuntime(dataDir, func(rt *runtime.Runtime) error {
					names, err := rt.Ledger().Streams()
					if err != nil {
						return err
					}
					for _, name := range names {
						_, _ = fmt.Fprintln(out, name)
					}
					return nil
				})
			}

			var data struct {
				Streams []string `json:"streams"`
			}
			if err := httpGetJSON(baseURL()+"/v1/streams", &data); err != nil {
				return err
			}
			for _, name := range data.Streams {
				_, _ = fmt.Fprintln(out, name)
			}
			return nil
		},
	}
	listCmd.Flags().String("data-dir", "", "Data directory of a stopped server (opens the store directly)")
	return listCmd
}
