package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kisanmitra/internal/gateway/handler"
	"kisanmitra/internal/types"
)

func newFlowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flows",
		Short: "List flow names and their Connect procedures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range types.Flows {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-26s %s\n", f, handler.Procedure(f)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
