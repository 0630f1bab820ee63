// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STAKERD_TEST_A=1\nSTAKERD_TEST_B=from-file\n"), 0o600))
	t.Setenv("STAKERD_TEST_B", "from-env")
	os.Unsetenv("STAKERD_TEST_A")
	t.Cleanup(func() { os.Unsetenv("STAKERD_TEST_A") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "1", os.Getenv("STAKERD_TEST_A"))
	assert.Equal(t, "from-env", os.Getenv("STAKERD_TEST_B"), "set variables are kept")
}

func TestJSONDiff(t *testing.T) {
	type pair struct {
		A int
		B string
	}
	assert.Empty(t, jsonDiff(pair{1, "x"}, pair{1, "x"}))
	assert.Empty(t, jsonDiff(nil, nil))

	diff := jsonDiff(pair{1, "x"}, pair{1, "y"})
	assert.Contains(t, diff, "--- Expected")
	assert.Contains(t, diff, "+++ Actual")
	assert.Contains(t, diff, `-  "B": "x"`)
	assert.Contains(t, diff, `+  "B": "y"`)
}

func TestOrDisabled(t *testing.T) {
	assert.Equal(t, "disabled", orDisabled(""))
	assert.Equal(t, "http://localhost:2112/metrics", orDisabled("http://localhost:2112/metrics"))
}
