// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// OS returns a FileSystem implementation backed by the host filesystem.
// Paths are passed through untouched so both relative and absolute paths
// work.
func OS() FileSystem {
	return &osFS{}
}

type osFS struct{}

var _ FileSystem = (*osFS)(nil)

func (o *osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (o *osFS) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (o *osFS) Create(name string) (File, error) {
	return os.Create(name)
}

func (o *osFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (o *osFS) IsDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

func (o *osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (o *osFS) Remove(path string) error {
	return os.Remove(path)
}

func (o *osFS) WalkDir(path string, walkFn fs.WalkDirFunc) error {
	return filepath.WalkDir(path, walkFn)
}
