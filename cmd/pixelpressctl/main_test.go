package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixelpress/server/internal/auth"
)

func TestTokenCommand_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "ctl-secret")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "acct-42", "--admin", "--email", "ops@example.com"})

	require.NoError(t, cmd.Execute())

	verifier, err := auth.NewVerifier("ctl-secret")
	require.NoError(t, err)

	claims, err := verifier.Validate(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "acct-42", claims.UserID())
	assert.True(t, claims.IsAdmin())
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "acct-42"})

	assert.Error(t, cmd.Execute())
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:9000/api/v1/ws?token=abc", watchURL("localhost:9000", "abc"))
}

func TestFormatEvent(t *testing.T) {
	line := formatEvent([]byte(`{"type":"queue_updated","timestamp":"2026-01-02T03:04:05Z","payload":{"run":null}}`))
	assert.Contains(t, line, "queue_updated")
	assert.Contains(t, line, `{"run":null}`)

	assert.Equal(t, "not json", formatEvent([]byte("not json")))
}
