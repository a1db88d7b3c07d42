package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/fixvec/pipeline"
)

func newMethodsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the available downsamplers and compression backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := pipeline.New(pipeline.WithLogger(a.logger.Logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "downsamplers: %s\n", strings.Join(p.Downsamplers(), ", "))
			fmt.Fprintf(w, "backends:     %s\n", strings.Join(p.Backends(), ", "))

			return nil
		},
	}
}
