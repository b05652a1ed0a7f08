package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := versionCmd()
	cmd.SetOut(out)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, Version+"\n", out.String())
}

func TestBootstrap_MissingSigningKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	_, _, err := bootstrap(t.TempDir())
	assert.ErrorContains(t, err, "jwt.signing_key is required")
}
