package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"octavia/internal/routes"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify PATH...",
		Short: "Show how the gateway classifies request paths",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c := routes.NewClassifier(routes.DefaultTable())
			for _, p := range args {
				if routes.Excluded(p) {
					fmt.Printf("%-24s excluded\n", p)
					continue
				}
				cl := c.Classify(p)
				fmt.Printf("%-24s %s protected=%t auth=%t public=%t\n",
					p, cl.Path, cl.Protected, cl.AuthRoute, cl.Public)
			}
		},
	}

	return cmd
}
