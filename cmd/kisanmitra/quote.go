package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kisanmitra/internal/market"
)

func newQuoteCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "quote <crop> <mandi>",
		Short: "Print the simulated market series for a crop and mandi",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now()
			if date != "" {
				d, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				ref = d
			}
			return printJSON(cmd.OutOrStdout(), market.NewGenerator().Quote(args[0], args[1], ref))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference date YYYY-MM-DD (default today)")
	return cmd
}
