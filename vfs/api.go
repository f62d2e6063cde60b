// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package vfs extends the default read-only filesystem abstraction to add the
// write operations the task layer needs, so that task planning and execution
// stay testable against any filesystem implementation.
package vfs

import (
	"io"
	"io/fs"
)

// File represents the file writer interface.
type File interface {
	fs.File
	io.Writer
}

// FileSystem describes the filesystem surface consumed by the task layer.
type FileSystem interface {
	fs.FS
	fs.StatFS
	fs.GlobFS

	// Create a file.
	Create(name string) (File, error)
	// MkdirAll creates a directory path with all intermediary directories.
	MkdirAll(path string, perm fs.FileMode) error
	// IsDir returns true if the path is a directory.
	IsDir(path string) bool
	// Exists is true if the path exists in the filesystem.
	Exists(path string) bool
	// Remove removes the given path from the filesystem.
	Remove(path string) error
	// WalkDir walks the filesystem from the given path.
	WalkDir(path string, walkFn fs.WalkDirFunc) error
}
