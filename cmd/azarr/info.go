package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/azarr"
)

var infoCmd = &cobra.Command{
	Use:   "info LOCATION [PATH]",
	Short: "Describe a group or an array",
	Long: `Describe the node at PATH (default: the root). For an array this prints
its shape, chunk shape, element type, compressor and fill value. Attributes
are printed for both arrays and groups.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := openClient(ctx, args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	path := ""
	if len(args) == 2 {
		path = args[1]
	}
	node, err := openNode(ctx, client, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch n := node.(type) {
	case *azarr.Array:
		fmt.Fprintf(out, "Array:      /%s\n", n.Path())
		fmt.Fprintf(out, "Shape:      %v\n", n.Shape())
		fmt.Fprintf(out, "Chunks:     %v (%d total)\n", n.Chunks(), n.NChunks())
		fmt.Fprintf(out, "Dtype:      %s\n", n.Dtype())
		fmt.Fprintf(out, "Order:      %s\n", n.Order())
		fmt.Fprintf(out, "Compressor: %s\n", orNone(n.Compressor()))
		fmt.Fprintf(out, "Fill value: %v\n", n.FillValue())
	case *azarr.Group:
		fmt.Fprintf(out, "Group:      /%s\n", n.Path())
	}

	attrs, err := node.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("reading attributes: %w", err)
	}
	if len(attrs) > 0 {
		data, err := json.MarshalIndent(attrs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Attributes: %s\n", data)
	}
	return nil
}

// openNode opens path as an array, or as a group if there is no array there.
func openNode(ctx context.Context, client *azarr.Client, path string) (azarr.Node, error) {
	arr, err := client.OpenArray(ctx, path)
	if err == nil {
		return arr, nil
	}
	if !errors.Is(err, azarr.ErrArrayNotFound) {
		return nil, err
	}
	grp, err := client.OpenGroup(ctx, path)
	if err != nil {
		if errors.Is(err, azarr.ErrGroupNotFound) {
			return nil, fmt.Errorf("%w: %q", azarr.ErrNodeNotFound, path)
		}
		return nil, err
	}
	return grp, nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
