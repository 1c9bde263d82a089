package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insideout/userdb/internal/auth"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd(load ManagerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a session token",
		Long:  "Check signature and expiry. Prints the claims as JSON, or the failure category.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tm, err := load()
			if err != nil {
				return err
			}
			claims, err := tm.Verify(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("token rejected: %s", auth.FailureReason(err))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}
