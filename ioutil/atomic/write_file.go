// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package atomic provides atomic file write operations.
package atomic

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/DataDog/kelsi/log"
)

// WriteFile atomically replaces the file content of the filename target by
// the reader content. The content is first written to a temporary file next
// to the destination which then replaces it, so an error at any point leaves
// the existing file intact.
func WriteFile(filename string, r io.Reader, perm fs.FileMode) (err error) {
	// Extract file and directory
	dir, file := filepath.Split(filename)

	// Ensure a clean directory
	dir = filepath.Clean(dir)

	// Create a temporary file
	f, err := os.CreateTemp(dir, file)
	if err != nil {
		return fmt.Errorf("unable to create the temporary file: %w", err)
	}
	defer func() {
		// Ensure that the temporary file is removed in all cases.
		if err := os.Remove(f.Name()); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Error(err).Messagef("unable to remove temporary file %q", f.Name())
			}
		}
	}()
	defer func(closer io.Closer) {
		// Close the temporary file
		if err := closer.Close(); err != nil {
			if !errors.Is(err, fs.ErrClosed) {
				log.Error(err).Message("unable to successfully close the file handler")
			}
		}
	}(f)

	// Use a buffered IO Writer to reduce write syscalls
	bio := bufio.NewWriter(f)

	// Copy the file content
	if _, err := io.Copy(bio, r); err != nil {
		return fmt.Errorf("unable to copy the reader content to the temporary file: %w", err)
	}

	// Flush the buffered writer to ensure that there is no dangling data.
	if err := bio.Flush(); err != nil {
		return fmt.Errorf("unable to flush the buffered writer: %w", err)
	}

	// Ensure that the input file is synced to disk.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("unable to sync file content: %w", err)
	}

	// Apply the requested file mode before exposure under the target name.
	if err := f.Chmod(perm); err != nil {
		return fmt.Errorf("unable to apply file mode to temporary file %q: %w", f.Name(), err)
	}

	// Explicitly close the temporary file
	if err = f.Close(); err != nil {
		return fmt.Errorf("unable to close the temporary file: %w", err)
	}

	// Ensure real temporary file (MacOS has symlinks to temporary files)
	tmpFilename, err := filepath.EvalSymlinks(f.Name())
	if err != nil {
		return fmt.Errorf("unable to evaluate %q symlink: %w", f.Name(), err)
	}

	// Move the temporary file to the target file
	if err := os.Rename(tmpFilename, filename); err != nil {
		return fmt.Errorf("unable to replace the target file %q by the temporary one: %w", filename, err)
	}

	// Ensure directory to be synced too
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("unable to sync directory %q: %w", dir, err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// syncDir ensures that the directory handle is synced on disk by explicitly
// calling fsync on the directory handle.
func syncDir(dir string) error {
	// Open the directory
	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("unable to open the target directory %q: %w", dir, err)
	}

	// Sync to disk
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("unable to sync directory %q: %w", dir, err)
	}

	// Close the directory handle
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close the directory handle for %q: %w", dir, err)
	}

	return nil
}
