package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd(c *cli) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "run <flow>",
		Short: "Run one flow and print its result envelope",
		Long: `Runs a single flow with a JSON input read from --input (a file, or "-" for
stdin) and prints {"success":true,"data":...} or {"success":false,"error":...}.

Example:
  echo '{"crop":"Onion","mandi":"Lasalgaon","language":"mr"}' | kisanmitra run getMarketPrice --provider fake`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}
			a, err := c.newApp(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Gate().Run(cmd.Context(), args[0], raw)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", `JSON input file, "-" for stdin`)
	return cmd
}

func readInput(stdin io.Reader, path string) (json.RawMessage, error) {
	var (
		b   []byte
		err error
	)
	if path = strings.TrimSpace(path); path == "" || path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return json.RawMessage(b), nil
}
