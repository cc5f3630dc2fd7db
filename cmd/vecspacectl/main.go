// Command vecspacectl runs filter translation, response normalization and
// neighbor queries locally, without a server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecspace/internal/version"
	vecspace "github.com/kailas-cloud/vecspace/pkg/sdk"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vecspacectl",
		Short:         "Translate filters, normalize responses and query point spaces",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newBackendsCmd(),
		newFilterCmd(),
		newNormalizeCmd(),
		newNeighborsCmd(),
	)
	return root
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List supported backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := vecspace.New()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIDE\tLANGUAGE\tEXAMPLE")
			for _, d := range client.Backends() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, d.Side, d.QueryLanguage, d.Example)
			}
			return tw.Flush()
		},
	}
}

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <backend> <conditions.json|->",
		Short: "Translate [[field, op, value], ...] into a backend filter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			conds, err := vecspace.ParseConditions(data)
			if err != nil {
				return err
			}
			client, err := vecspace.New()
			if err != nil {
				return err
			}
			out, err := client.TranslateFilter(args[0], conds)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), out)
		},
	}
}

func newNormalizeCmd() *cobra.Command {
	var opts vecspace.NormalizeOptions
	cmd := &cobra.Command{
		Use:   "normalize <backend> <response.json|->",
		Short: "Convert a raw backend response into canonical points",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}
			dec := json.NewDecoder(bytes.NewReader(data))
			dec.UseNumber()
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("invalid response JSON: %w", err)
			}
			client, err := vecspace.New()
			if err != nil {
				return err
			}
			points, err := client.Normalize(args[0], raw, opts)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), points)
		},
	}
	cmd.Flags().StringVar(&opts.ClassName, "class-name", "", "weaviate class under data.Get")
	cmd.Flags().StringVar(&opts.VectorName, "vector-name", "", "qdrant named vector")
	return cmd
}

type neighborOutput struct {
	ID       string   `json:"id"`
	Distance *float64 `json:"distance"`
}

func newNeighborsCmd() *cobra.Command {
	var (
		metric      string
		vectorField string
		k           int
		threshold   float64
	)
	cmd := &cobra.Command{
		Use:   "neighbors <points.json|-> <reference-id>",
		Short: "List the nearest neighbors of a point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var points []vecspace.Point
			if err := json.Unmarshal(data, &points); err != nil {
				return fmt.Errorf("invalid points JSON: %w", err)
			}
			for i := range points {
				if points[i].ID == "" {
					points[i].ID = fmt.Sprintf("point_%d", i)
				}
			}

			q := vecspace.NeighborQuery{
				ReferenceID: args[1],
				Metric:      vecspace.Metric(metric),
				VectorField: vectorField,
				K:           k,
			}
			if cmd.Flags().Changed("threshold") {
				q.Threshold = &threshold
			}

			client, err := vecspace.New()
			if err != nil {
				return err
			}
			neighbors, err := client.Neighbors(points, q)
			if err != nil {
				return err
			}
			out := make([]neighborOutput, len(neighbors))
			for i, n := range neighbors {
				out[i] = neighborOutput{ID: n.ID}
				if d := n.Distance; !math.IsInf(d, 0) && !math.IsNaN(d) {
					out[i].Distance = &d
				}
			}
			return printResult(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "", "euclidean, manhattan, cosine or dot_product")
	cmd.Flags().StringVar(&vectorField, "vector-field", "", `compare "vector" or a metadata field instead of x/y/z`)
	cmd.Flags().IntVar(&k, "k", 0, "number of neighbors (0 = all)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "maximum distance; overrides --k")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// printResult writes strings verbatim and everything else as indented JSON.
func printResult(w io.Writer, v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
