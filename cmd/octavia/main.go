package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "octavia",
		Short: "Web gateway for Octavia authentication",
		Long: `octavia serves the web front of Octavia: it guards protected pages
with the session cookie and proxies login, signup and logout to the
backend API.

The remaining commands drive a running gateway from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		loginCmd(),
		signupCmd(),
		logoutCmd(),
		classifyCmd(),
		healthCmd(),
		meCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
