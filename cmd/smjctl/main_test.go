package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BAHUBALISID/smj/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	// flag values survive between Execute calls, so every call passes them all
	t.Cleanup(func() { envFile = "" })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	const secret = "cli-test-secret-cli-test-secret-cli"
	t.Setenv("JWT_SECRET", secret)
	actor := uuid.NewString()

	out, err := run(t, "token", "--actor", actor, "--role", "admin")
	require.NoError(t, err)

	claims := &middleware.JWTClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, actor, claims.UserID)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)
}

func TestTokenCommand_RejectsBadInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")

	_, err := run(t, "token", "--actor", "not-a-uuid", "--role", "admin")
	assert.Error(t, err)

	_, err = run(t, "token", "--actor", uuid.NewString(), "--role", "owner")
	assert.Error(t, err)
}

func TestEnvFileFlag(t *testing.T) {
	const secret = "from-env-file-secret-from-env-file"
	path := filepath.Join(t.TempDir(), "smj.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET="+secret+"\n"), 0o600))
	// godotenv.Load does not override variables that are already set
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	out, err := run(t, "--env-file", path, "token", "--actor", uuid.NewString(), "--role", "staff")
	require.NoError(t, err)

	_, err = jwt.Parse(strings.TrimSpace(out), func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	assert.NoError(t, err)
}

func TestEnvFileFlag_Missing(t *testing.T) {
	_, err := run(t, "--env-file", filepath.Join(t.TempDir(), "absent.env"), "token", "--actor", uuid.NewString(), "--role", "staff")
	assert.Error(t, err)
}
