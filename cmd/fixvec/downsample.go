package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arloliu/fixvec/backend"
	"github.com/arloliu/fixvec/errs"
	"github.com/arloliu/fixvec/internal/ingest"
	"github.com/arloliu/fixvec/pipeline"
)

func newDownsampleCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "downsample <file>",
		Short: "Downsample an x/y series and encode the selected samples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ingest.ReadXY(args[0], a.ingestOptions())
			if err != nil {
				return err
			}
			if len(s.Y) == 0 {
				return fmt.Errorf("%w: %s holds no numeric samples", errs.ErrInvalidParameter, args[0])
			}

			p, err := pipeline.New(pipeline.WithLogger(a.logger.Logger))
			if err != nil {
				return err
			}

			view, _ := a.cfg.ViewMode()
			nOut := min(a.cfg.Pipeline.NOut, len(s.Y))
			res, err := p.Downsample(cmd.Context(), s.X, s.Y, nOut,
				pipeline.WithMethod(a.cfg.Pipeline.Method),
				pipeline.WithBitWidth(a.cfg.BitWidth()),
				pipeline.WithPrecision(a.precision(s.Decimals)),
				pipeline.WithCompression(a.cfg.Pipeline.Compression),
				pipeline.WithViewMode(view),
			)
			if err != nil {
				return err
			}

			if err := summarize(cmd.OutOrStdout(), a.cfg.Pipeline.Method, len(s.Y), res); err != nil {
				return err
			}
			if output == "" {
				return nil
			}

			return writeSeries(output, a.ingestOptions().Delimiter, res)
		},
	}

	cmd.Flags().String("method", "", "downsampler name")
	cmd.Flags().Int("n-out", 0, "maximum number of selected samples")
	cmd.Flags().String("view", "", "view mode of the output vectors: compressed or decompressed")
	cmd.Flags().Int("x-column", 0, "zero-based column holding the x values")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the selected samples to this file")

	return cmd
}

func summarize(w io.Writer, method string, in int, res pipeline.Result) error {
	backendName := res.Y.BackendName()
	if backendName == "" {
		backendName = backend.NoneName
	}

	xBytes, err := res.X.SizeInBytes()
	if err != nil {
		return err
	}
	yBytes, err := res.Y.SizeInBytes()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "method: %s  input: %d  selected: %d  backend: %s  x_bytes: %d  y_bytes: %d\n",
		method, in, res.Y.Len(), backendName, xBytes, yBytes)

	return err
}

// writeSeries writes the decoded x/y pairs of res as delimited rows.
func writeSeries(path string, delim rune, res pipeline.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	xs, err := res.X.Floats()
	if err != nil {
		return err
	}
	ys, err := res.Y.Floats()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	cw.Comma = delim
	for i := range ys {
		rec := []string{
			strconv.FormatFloat(xs[i], 'f', res.X.Precision(), 64),
			strconv.FormatFloat(ys[i], 'f', res.Y.Precision(), 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
