package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/internal/ingest"
	"github.com/arloliu/fixvec/vector"
)

func newEncodeCmd(a *app) *cobra.Command {
	var compare bool

	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Encode one column of a delimited file and report its size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ingest.ReadColumn(args[0], a.ingestOptions())
			if err != nil {
				return err
			}

			v, err := vector.New(
				vector.WithPrecision(a.precision(s.Decimals)),
				vector.WithBitWidth(a.cfg.BitWidth()),
			)
			if err != nil {
				return err
			}
			if err := v.Allocate(len(s.Y)); err != nil {
				return err
			}
			if err := v.Fill(s.Y); err != nil {
				return fmt.Errorf("encode %s: %w", args[0], err)
			}

			names := []string{a.cfg.Pipeline.Compression}
			if compare {
				names = backend.NewDefaultRegistry().Names()
			}

			return a.reportSizes(cmd.Context(), cmd.OutOrStdout(), v, names)
		},
	}

	cmd.Flags().BoolVar(&compare, "compare", false, "report the size under every registered backend")

	return cmd
}

// reportSizes compresses a copy of v with each named backend and prints a size table.
func (a *app) reportSizes(ctx context.Context, w io.Writer, v *vector.Vector, names []string) error {
	raw, err := v.SizeInBytes()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "samples: %d  precision: %d  width: %s\n", v.Len(), v.Precision(), v.BitWidth())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tBYTES\tRATIO")

	reg := backend.NewDefaultRegistry()
	for _, name := range names {
		b, err := reg.Resolve(name)
		if err != nil {
			return err
		}

		size, err := compressedSize(v, b)
		if err != nil {
			return err
		}
		a.logger.LogCompress(ctx, "y", name, raw, size, nil)

		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", name, size, ratio(raw, size))
	}

	return tw.Flush()
}

// compressedSize returns the size of v under b, or the raw size when b is nil.
func compressedSize(v *vector.Vector, b backend.Backend) (int, error) {
	if b == nil {
		return v.SizeInBytes()
	}

	c, err := v.Clone()
	if err != nil {
		return 0, err
	}
	if err := c.Compress(b); err != nil {
		return 0, fmt.Errorf("compress with %s: %w", b.Name(), err)
	}

	return c.SizeInBytes()
}

func ratio(raw, packed int) float64 {
	if packed == 0 {
		return 0
	}

	return float64(raw) / float64(packed)
}
