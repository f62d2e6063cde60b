// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package atomic

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (fr *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("error")
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "target.txt")

	require.NoError(t, WriteFile(target, strings.NewReader("first"), 0o600))

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("first"), raw)

	fi, err := os.Stat(target)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestWriteFile_Replace(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "target.txt")

	require.NoError(t, WriteFile(target, strings.NewReader("first"), 0o600))
	require.NoError(t, WriteFile(target, strings.NewReader("second"), 0o600))

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), raw)
}

func TestWriteFile_ReaderError(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := filepath.Join(root, "target.txt")

	require.NoError(t, WriteFile(target, strings.NewReader("kept"), 0o600))
	require.Error(t, WriteFile(target, &failingReader{}, 0o600))

	// Failed replacement leaves the previous content intact and no
	// temporary file behind.
	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("kept"), raw)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
