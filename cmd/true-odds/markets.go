package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/true-odds/internal/models"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List the supported market keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, g := range models.MarketGroups() {
			keys := make([]string, len(g.Keys))
			for i, k := range g.Keys {
				keys[i] = string(k)
			}
			suffix := ""
			if !g.Partition {
				suffix = " (overlapping)"
			}
			fmt.Fprintf(out, "%-16s %s%s\n", g.Name, strings.Join(keys, ", "), suffix)
		}
		fmt.Fprintf(out, "\n%d markets\n", models.MarketCount)
	},
}
