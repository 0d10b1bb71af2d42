package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/discochess/azarr"
)

var getCmd = &cobra.Command{
	Use:   "get LOCATION PATH [SELECTION]",
	Short: "Read a selection of an array",
	Long: `Read a selection of the array at PATH and print it.

SELECTION is a comma separated list with one entry per leading dimension.
Each entry is an index ("5", "-1") or a slice ("3:7", ":", "::2").
Missing entries select whole dimensions. Put "--" before a selection that
starts with "-".

Examples:
  # The first ten rows of column 5
  azarr get https://example.com/data.zarr temperature "0:10,5"

  # The last element
  azarr get ./data.zarr temperature -- -1

  # Summary statistics of a whole array
  azarr get --stats ./data.zarr temperature`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runGet,
}

var (
	getFields  []string
	outputJSON bool
	showStats  bool
	showTiming bool
)

func init() {
	getCmd.Flags().StringSliceVar(&getFields, "fields", nil, "structured fields to read")
	getCmd.Flags().BoolVar(&outputJSON, "json", false, "output result as JSON")
	getCmd.Flags().BoolVar(&showStats, "stats", false, "print summary statistics instead of values")
	getCmd.Flags().BoolVar(&showTiming, "timing", false, "show read timing")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
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
	client, err := openClient(ctx, args[0])
	if err != nil {
		return err
	}
	defer client.Close()

	arr, err := client.OpenArray(ctx, args[1])
	if err != nil {
		return err
	}

	start := time.Now()
	v, err := arr.Read(ctx, azarr.Request{Selection: sel, Fields: getFields})
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	switch {
	case showStats:
		err = printStats(out, v)
	case outputJSON:
		err = printJSON(out, v)
	default:
		err = printText(out, v)
	}
	if err != nil {
		return err
	}
	if showTiming {
		fmt.Fprintf(out, "Time:  %s\n", elapsed)
	}
	return nil
}

func printText(w io.Writer, v any) error {
	buf, ok := v.(*azarr.Buffer)
	if !ok {
		fmt.Fprintln(w, v)
		return nil
	}
	values, err := buf.Values()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Shape: %v\n", buf.Shape())
	fmt.Fprintf(w, "Dtype: %s\n", buf.Dtype())
	fmt.Fprintf(w, "Values: %v\n", values)
	return nil
}

func printJSON(w io.Writer, v any) error {
	doc := map[string]any{"value": jsonSafe([]any{v})[0]}
	if buf, ok := v.(*azarr.Buffer); ok {
		values, err := buf.Values()
		if err != nil {
			return err
		}
		doc = map[string]any{"shape": buf.Shape(), "dtype": buf.Dtype(), "values": jsonSafe(values)}
	}
	return json.NewEncoder(w).Encode(doc)
}

// jsonSafe replaces non-finite floats, which JSON cannot represent, with
// their zarr spellings.
func jsonSafe(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		f, ok := v.(float64)
		if !ok {
			if f32, is32 := v.(float32); is32 {
				f, ok = float64(f32), true
			}
		}
		switch {
		case ok && math.IsNaN(f):
			out[i] = "NaN"
		case ok && math.IsInf(f, 1):
			out[i] = "Infinity"
		case ok && math.IsInf(f, -1):
			out[i] = "-Infinity"
		default:
			out[i] = v
		}
	}
	return out
}

// summary holds statistics over the finite values of a read.
type summary struct {
	Count  int
	NaN    int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
}

func summarize(values []float64) summary {
	finite := make([]float64, 0, len(values))
	s := summary{Count: len(values)}
	for _, v := range values {
		if math.IsNaN(v) {
			s.NaN++
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return s
	}
	slices.Sort(finite)
	s.Min = finite[0]
	s.Max = finite[len(finite)-1]
	s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, finite, nil)
	return s
}

func printStats(w io.Writer, v any) error {
	var values []float64
	switch x := v.(type) {
	case *azarr.Buffer:
		var err error
		if values, err = x.Float64s(); err != nil {
			return err
		}
	default:
		b, err := azarr.NewBuffer("<f8")
		if err != nil {
			return err
		}
		if err := b.SetElement(nil, v); err != nil {
			return fmt.Errorf("statistics need numeric values: %w", err)
		}
		values, _ = b.Float64s()
	}

	s := summarize(values)
	fmt.Fprintf(w, "Count:  %d\n", s.Count)
	if s.NaN > 0 {
		fmt.Fprintf(w, "NaN:    %d\n", s.NaN)
	}
	if s.Count > s.NaN {
		fmt.Fprintf(w, "Min:    %g\n", s.Min)
		fmt.Fprintf(w, "Max:    %g\n", s.Max)
		fmt.Fprintf(w, "Mean:   %g\n", s.Mean)
		fmt.Fprintf(w, "StdDev: %g\n", s.StdDev)
		fmt.Fprintf(w, "Median: %g\n", s.Median)
	}
	return nil
}
