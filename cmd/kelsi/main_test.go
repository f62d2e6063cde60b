// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	require.Zero(t, run([]string{"version"}))
}

func TestRun_Help(t *testing.T) {
	require.Zero(t, run([]string{"help"}))
	require.Zero(t, run([]string{"-h"}))
}

func TestRun_NoArguments(t *testing.T) {
	require.Equal(t, 1, run(nil))
}

func TestRun_UnknownCommand(t *testing.T) {
	require.Equal(t, 1, run([]string{"explode"}))
}

func TestRun_Passphrase(t *testing.T) {
	require.Zero(t, run([]string{"passphrase", "-words", "4"}))
	require.Zero(t, run([]string{"passphrase", "-random"}))
}

func TestRun_PassphraseToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "passphrase.txt")
	require.Zero(t, run([]string{"passphrase", "-words", "5", "-out", out}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, 5, len(strings.Split(strings.TrimSpace(string(raw)), "-")))
}

func TestRun_CryptMissingArguments(t *testing.T) {
	t.Setenv("KELSI_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))

	require.Equal(t, 1, run([]string{"encrypt"}))
	require.Equal(t, 1, run([]string{"decrypt", "only-one-path"}))
}
