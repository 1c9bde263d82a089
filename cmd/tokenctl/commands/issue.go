package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/domain"
)

// NewIssueCmd creates the issue command.
func NewIssueCmd(load ManagerLoader) *cobra.Command {
	var id, email, role string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed session token",
		Long:  "Mint a token valid for one hour for the given identity and print it to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(strings.ToLower(strings.TrimSpace(role)))
			if r != domain.RoleUser && r != domain.RoleAdmin {
				return fmt.Errorf("--role must be %q or %q", domain.RoleUser, domain.RoleAdmin)
			}
			tm, err := load()
			if err != nil {
				return err
			}
			token, claims, err := tm.Issue(auth.Identity{
				SubjectID: strings.TrimSpace(id),
				Email:     strings.TrimSpace(email),
				Role:      r,
			})
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", claims.Expiry().UTC().Format("2006-01-02T15:04:05Z"))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "subject id (required)")
	cmd.Flags().StringVar(&email, "email", "", "subject email")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "role: user or admin")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
