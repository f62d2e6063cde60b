// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_BlankPath(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
parallel: -1
skip: true
hidden: true
logging:
  level: debug
  file: /tmp/kelsi.log
  rotation_size: 25
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, -1, cfg.Parallel)
	require.True(t, cfg.Skip)
	require.False(t, cfg.Overwrite)
	require.True(t, cfg.Hidden)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/kelsi.log", cfg.Logging.File)
	require.Equal(t, 25, cfg.Logging.RotationSize)
	// Unset values keep their defaults
	require.Equal(t, 3, cfg.Logging.MaxBackups)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallel: [not a number"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	require.Error(t, WriteDefault(""))
}
