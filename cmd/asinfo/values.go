package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var valuesCmd = &cobra.Command{
	Use:   "values <name>",
	Short: "Request a nested value and print one key=value pair per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		return client.RequestValues(cmd.Context(), args[0], func(name, value []byte) bool {
			fmt.Fprintf(out, "%s=%s\n", name, value)
			return true
		})
	},
}
