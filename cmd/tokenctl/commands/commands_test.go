package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insideout/userdb/internal/auth"
	"github.com/insideout/userdb/internal/domain"
)

func staticLoader(t *testing.T, secret string) ManagerLoader {
	t.Helper()
	tm, err := auth.NewTokenManager(secret)
	require.NoError(t, err)
	return func() (*auth.TokenManager, error) { return tm, nil }
}

func run(cmd *cobra.Command, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIssueThenVerify(t *testing.T) {
	load := staticLoader(t, "cli-secret")

	token, err := run(NewIssueCmd(load), "--id", "42", "--email", "ops@example.com", "--role", "admin")
	require.NoError(t, err)
	token = strings.TrimSpace(token)
	assert.Len(t, strings.Split(token, "."), 3)

	out, err := run(NewVerifyCmd(load), token)
	require.NoError(t, err)

	var claims auth.Claims
	require.NoError(t, json.Unmarshal([]byte(out), &claims))
	assert.Equal(t, "42", claims.ID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, int64(3600), claims.ExpiresAt-claims.IssuedAt)
}

func TestVerifyReportsCategory(t *testing.T) {
	token, err := run(NewIssueCmd(staticLoader(t, "one")), "--id", "42")
	require.NoError(t, err)

	_, err = run(NewVerifyCmd(staticLoader(t, "two")), strings.TrimSpace(token))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_signature")

	_, err = run(NewVerifyCmd(staticLoader(t, "two")), "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	_, err := run(NewIssueCmd(staticLoader(t, "s")), "--id", "42", "--role", "root")
	assert.Error(t, err)

	_, err = run(NewIssueCmd(staticLoader(t, "s")))
	assert.Error(t, err, "--id is required")
}
