/*
LICENSE
  Copyright (C) 2026 the CoastPress project

  This is free software: you can redistribute it and/or modify it
  under the terms of the GNU General Public License as published by
  the Free Software Foundation, either version 3 of the License, or
  (at your option) any later version.

  It is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses/.
*/

package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSecretsFile(t *testing.T, projectID, contents string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "secrets")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o600))
	t.Setenv(projectID+"_SECRETS", p)
}

func TestGetSecrets(t *testing.T) {
	writeSecretsFile(t, "TESTPROJECT", "alpha:one\nbeta:two:with:colons\r\n\ngamma:three\n")
	ctx := context.Background()

	m, err := GetSecrets(ctx, "testproject", []string{"alpha", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, "one", m["alpha"])
	assert.Equal(t, "two:with:colons", m["beta"], "only the first colon separates key and value")
	assert.Equal(t, "three", m["gamma"])
}

func TestGetSecretsMissingKey(t *testing.T) {
	writeSecretsFile(t, "TESTPROJECT", "alpha:one\n")

	_, err := GetSecrets(context.Background(), "testproject", []string{"alpha", "beta"})
	assert.Error(t, err)
}

func TestGetSecretsNoEnvVar(t *testing.T) {
	t.Setenv("NOSUCHPROJECT_SECRETS", "")
	_, err := GetSecrets(context.Background(), "nosuchproject", nil)
	assert.Error(t, err)
}

func TestGetSecret(t *testing.T) {
	writeSecretsFile(t, "TESTPROJECT", "alpha:one\n")

	v, err := GetSecret(context.Background(), "testproject", "alpha")
	require.NoError(t, err)
	assert.Equal(t, "one", v)
}

func TestGetHexSecret(t *testing.T) {
	writeSecretsFile(t, "TESTPROJECT", "key:deadbeef\nbad:not-hex\n")
	ctx := context.Background()

	b, err := GetHexSecret(ctx, "testproject", "key")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)

	_, err = GetHexSecret(ctx, "testproject", "bad")
	assert.Error(t, err)
}
