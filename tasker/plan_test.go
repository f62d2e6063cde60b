// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package tasker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newSourceTree builds a small directory layout to plan against:
//
//	a.txt
//	b.txt
//	.hidden.txt
//	sub/c.txt
//	sub/.secret/d.txt
func newSourceTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.txt"), []byte("h"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", ".secret"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.txt"), []byte("c"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", ".secret", "d.txt"), []byte("d"), 0o600))
	return root
}

func TestPlan_SingleFileToFile(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out.kelsi")

	tasks, err := Plan(nil, []string{filepath.Join(root, "a.txt")}, dest, false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, filepath.Join(root, "a.txt"), tasks[0].Src)
	require.Equal(t, dest, tasks[0].Dest)
}

func TestPlan_SingleFileToDirectory(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	tasks, err := Plan(nil, []string{filepath.Join(root, "a.txt")}, dest, false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, filepath.Join(dest, "a.txt"), tasks[0].Dest)
}

func TestPlan_GlobToDirectory(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out") + string(filepath.Separator)

	tasks, err := Plan(nil, []string{filepath.Join(root, "*.txt")}, dest, false)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	var dests []string
	for _, task := range tasks {
		dests = append(dests, task.Dest)
	}
	require.ElementsMatch(t, []string{
		filepath.Join(root, "out", "a.txt"),
		filepath.Join(root, "out", "b.txt"),
	}, dests)
}

func TestPlan_GlobIncludesHidden(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out") + string(filepath.Separator)

	tasks, err := Plan(nil, []string{filepath.Join(root, "*.txt"), filepath.Join(root, ".*.txt")}, dest, true)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
}

func TestPlan_Directory(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out") + string(filepath.Separator)

	tasks, err := Plan(nil, []string{filepath.Join(root, "sub")}, dest, false)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, filepath.Join(root, "sub", "c.txt"), tasks[0].Src)
	require.Equal(t, filepath.Join(root, "out", "sub", "c.txt"), tasks[0].Dest)
}

func TestPlan_DirectoryWithHidden(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out") + string(filepath.Separator)

	tasks, err := Plan(nil, []string{filepath.Join(root, "sub")}, dest, true)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	var srcs []string
	for _, task := range tasks {
		srcs = append(srcs, task.Src)
	}
	require.ElementsMatch(t, []string{
		filepath.Join(root, "sub", "c.txt"),
		filepath.Join(root, "sub", ".secret", "d.txt"),
	}, srcs)
}

func TestPlan_MultipleFilesNeedDirectory(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)
	dest := filepath.Join(root, "out.kelsi")

	_, err := Plan(nil, []string{filepath.Join(root, "*.txt")}, dest, false)
	require.Error(t, err)
}

func TestPlan_NoMatch(t *testing.T) {
	t.Parallel()

	root := newSourceTree(t)

	tasks, err := Plan(nil, []string{filepath.Join(root, "*.doc")}, filepath.Join(root, "out")+string(filepath.Separator), false)
	require.NoError(t, err)
	require.Empty(t, tasks)
}
