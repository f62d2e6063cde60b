// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package tasker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/DataDog/kelsi/vfs"
)

// pathGroup keeps the files found under one matched source path together so
// that directory sources keep their internal layout below the destination.
type pathGroup struct {
	path   string
	isFile bool
	subs   []string
}

// Plan expands the given source patterns and maps every found file to its
// destination:
//
//   - a file source maps to dest itself, or to dest/filename when dest is a
//     directory
//   - a directory source maps each contained file to dest/dirname/relpath
//
// More than one file requires a directory destination, indicated by a
// trailing path separator or an existing directory. Hidden files and
// directories are excluded unless includeHidden is set.
func Plan(fsys vfs.FileSystem, srcs []string, dest string, includeHidden bool) ([]Task, error) {
	// Check arguments
	if fsys == nil {
		fsys = vfs.OS()
	}

	groups, err := listSourceFiles(fsys, srcs, includeHidden)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, pg := range groups {
		count += len(pg.subs)
	}

	destIsDir := strings.HasSuffix(dest, string(filepath.Separator)) || fsys.IsDir(dest)
	if count > 1 && !destIsDir {
		return nil, fmt.Errorf("multiple source files need a directory destination, %q must end with %q", dest, string(filepath.Separator))
	}

	return buildTasks(groups, dest, destIsDir), nil
}

func listSourceFiles(fsys vfs.FileSystem, srcs []string, includeHidden bool) ([]pathGroup, error) {
	seen := make(map[string]bool)
	var matches []string
	for _, src := range srcs {
		paths, err := fsys.Glob(src)
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", src, err)
		}
		for _, path := range paths {
			// Wildcards also match dot files; an explicitly named source is
			// always kept.
			if !includeHidden && path != src && isHidden(filepath.Base(path)) {
				continue
			}
			// Overlapping patterns yield each file once.
			if seen[path] {
				continue
			}
			seen[path] = true
			matches = append(matches, path)
		}
	}

	var groups []pathGroup
	for _, path := range matches {
		fi, err := fsys.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("unable to inspect source %q: %w", path, err)
		}

		switch {
		case fi.Mode().IsRegular():
			groups = append(groups, pathGroup{path: path, isFile: true, subs: []string{path}})
		case fi.IsDir():
			pg := pathGroup{path: path}
			err := fsys.WalkDir(path, func(sub string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !includeHidden && sub != path && isHidden(d.Name()) {
					if d.IsDir() {
						return fs.SkipDir
					}
					return nil
				}
				if d.Type().IsRegular() {
					pg.subs = append(pg.subs, sub)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("unable to walk source directory %q: %w", path, err)
			}
			groups = append(groups, pg)
		}
	}

	return groups, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func buildTasks(groups []pathGroup, dest string, destIsDir bool) []Task {
	var tasks []Task
	for _, pg := range groups {
		for _, path := range pg.subs {
			taskDest := dest

			if pg.isFile {
				if destIsDir {
					taskDest = filepath.Join(dest, filepath.Base(path))
				}
			} else {
				rel, err := filepath.Rel(pg.path, path)
				if err != nil {
					// Walked paths always live below their group root.
					rel = filepath.Base(path)
				}
				taskDest = filepath.Join(dest, filepath.Base(pg.path), rel)
			}

			tasks = append(tasks, Task{Src: path, Dest: taskDest})
		}
	}

	return tasks
}
