package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/azarr"
	"github.com/discochess/azarr/internal/store/nullstore"
)

var keysCmd = &cobra.Command{
	Use:   "keys LOCATION PATH [SELECTION]",
	Short: "List the chunk keys a read would fetch",
	Long: `Run a read of SELECTION against a recording store that returns nothing,
and print every chunk key the read asked for. No chunk is downloaded; only
the array metadata is read from LOCATION.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	var (
		sel []azarr.Selector
		err error
	)
	if len(args) == 3 {
		if sel, err = azarr.ParseSelection(args[2]); err != nil {
			return err
		}
	}

	ctx := context.Background()
	recorder := nullstore.New()
	client, err := openClient(ctx, args[0], azarr.WithChunkStore(recorder))
	if err != nil {
		return err
	}
	defer client.Close()

	arr, err := client.OpenArray(ctx, args[1])
	if err != nil {
		return err
	}
	if _, err := arr.Get(ctx, sel...); err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, key := range recorder.Keys() {
		fmt.Fprintln(out, key)
	}
	return nil
}
