package client

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/malbaugh/ksuid-ts/pkg/ksuid"
	"github.com/spf13/cobra"
)

// NewSetCommand constructs the `set` command group.
func NewSetCommand() *cobra.Command {
	setCmd := &cobra.Command{Use: "set", Short: "Pack and unpack compressed id sets"}
	setCmd.AddCommand(
		newSetPackCommand(),
		newSetUnpackCommand(),
	)
	return setCmd
}

// newSetPackCommand constructs the `set pack` subcommand.
func newSetPackCommand() *cobra.Command {
	packCmd := &cobra.Command{
		Use:   "pack",
		Short: "Read ids from stdin, one per line, and write a packed set as base64",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ids []ksuid.KSUID
			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				id, err := ksuid.Parse(line)
				if err != nil {
					return fmt.Errorf("parse %q: %w", line, err)
				}
				ids = append(ids, id)
			}
			if err := sc.Err(); err != nil {
				return err
			}
			set := ksuid.Compress(ids...)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(set))
			return nil
		},
	}
	return packCmd
}

// newSetUnpackCommand constructs the `set unpack` subcommand.
func newSetUnpackCommand() *cobra.Command {
	unpackCmd := &cobra.Command{
		Use:   "unpack [<base64>]",
		Short: "Decode a packed set and print its ids, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) > 0 {
				raw = args[0]
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = strings.TrimSpace(string(b))
			}
			packed, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				return fmt.Errorf("invalid set encoding: %w", err)
			}

			out := cmd.OutOrStdout()
			it := ksuid.CompressedSet(packed).Iter()
			for it.Next() {
				_, _ = fmt.Fprintln(out, it.KSUID.String())
			}
			return it.Err()
		},
	}
	return unpackCmd
}
