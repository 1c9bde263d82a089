package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insideout/userdb/cmd/tokenctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tokenctl",
		Short: "Issue and inspect session tokens",
		Long:  "Operator tool for minting and verifying session tokens with AUTH_JWT_SECRET",
	}

	load := commands.ManagerFromConfig
	rootCmd.AddCommand(commands.NewIssueCmd(load))
	rootCmd.AddCommand(commands.NewVerifyCmd(load))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
