package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/pior/asinfo"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [names...]",
	Short: "Request info values, or the default set when no name is given",
	Long: "Request info values from the nodes. With a single host the values are printed as name<TAB>value. " +
		"With several hosts every node is queried and each line is prefixed with the node address.",
	RunE: runGet,
}

func runGet(cmd *cobra.Command, names []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(hosts()) == 1 {
		var values map[string]string
		var err error
		switch len(names) {
		case 0:
			values, err = client.RequestDefault(ctx)
		case 1:
			// Single-value mode checks that the node echoes the name
			var value string
			value, err = client.RequestOne(ctx, names[0])
			values = map[string]string{names[0]: value}
		default:
			values, err = client.RequestMany(ctx, names...)
		}
		if err != nil {
			return err
		}
		printValues(out, "", values)
		return nil
	}

	results := client.Broadcast(ctx, names...)
	for _, r := range results {
		if r.Err == nil {
			printValues(out, r.Addr+"\t", r.Values)
		}
	}
	return asinfo.JoinErrors(results)
}

func printValues(w io.Writer, prefix string, values map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(values)) {
		fmt.Fprintf(w, "%s%s\t%s\n", prefix, name, values[name])
	}
}
