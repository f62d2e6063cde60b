// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package tasker

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DataDog/kelsi/crypto/encryption"
	"github.com/DataDog/kelsi/log"
	"github.com/DataDog/kelsi/vfs"
)

// Runner executes tasks against one cryptographic engine. Every run gets a
// fresh identifier attached to its log entries.
type Runner struct {
	engine       *encryption.FileCrypt
	fsys         vfs.FileSystem
	mode         Mode
	skipExisting bool
	overwrite    bool
	dryRun       bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithSkipExisting makes the runner skip tasks whose destination exists.
func WithSkipExisting(enabled bool) Option {
	return func(r *Runner) { r.skipExisting = enabled }
}

// WithOverwrite makes the runner replace existing destinations.
func WithOverwrite(enabled bool) Option {
	return func(r *Runner) { r.overwrite = enabled }
}

// WithDryRun makes the runner log what would be done without touching any
// file.
func WithDryRun(enabled bool) Option {
	return func(r *Runner) { r.dryRun = enabled }
}

// WithFileSystem overrides the filesystem used for policy checks and
// destination cleanup.
func WithFileSystem(fsys vfs.FileSystem) Option {
	return func(r *Runner) { r.fsys = fsys }
}

// NewRunner builds a task runner around the given engine and mode.
func NewRunner(engine *encryption.FileCrypt, mode Mode, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		fsys:   vfs.OS(),
		mode:   mode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the tasks one by one on the calling goroutine and returns the
// failed task count.
func (r *Runner) Run(tasks []Task) int {
	runID := uuid.NewString()

	failed := 0
	for index, task := range tasks {
		if err := r.runTask(r.engine, runID, index, len(tasks), task); err != nil {
			failed++
		}
	}
	return failed
}

// RunParallel executes the tasks with the given worker count and returns the
// failed task count. A negative worker count uses the CPU count. Each worker
// owns an engine clone; no engine instance crosses a goroutine boundary.
func (r *Runner) RunParallel(tasks []Task, parallel int) int {
	workers := parallel
	if workers < 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 1 {
		return r.Run(tasks)
	}

	runID := uuid.NewString()

	type job struct {
		index int
		task  Task
	}

	jobs := make(chan job)
	var failed atomic.Int64

	g := new(errgroup.Group)
	for i := 0; i < workers; i++ {
		engine := r.engine.Clone()
		g.Go(func() error {
			for j := range jobs {
				if err := r.runTask(engine, runID, j.index, len(tasks), j.task); err != nil {
					failed.Add(1)
				}
			}
			return nil
		})
	}

	for index, task := range tasks {
		jobs <- job{index: index, task: task}
	}
	close(jobs)

	// Workers never return an error; Wait only synchronizes completion.
	_ = g.Wait()

	return int(failed.Load())
}

// runTask applies the run policy and executes one task, logging its outcome.
func (r *Runner) runTask(engine *encryption.FileCrypt, runID string, index, total int, task Task) error {
	l := log.Fields(map[string]any{
		"run":  runID,
		"task": fmt.Sprintf("%d/%d", index+1, total),
	})

	if r.dryRun {
		l.Messagef("%s: %s (dry run)", r.mode, task)
		return nil
	}

	err := r.doTask(engine, task)
	switch {
	case err == nil:
		l.Messagef("%s: %s (success)", r.mode, task)
		return nil
	case errors.Is(err, ErrSkipExisting):
		l.Messagef("%s: %s (skip existing)", r.mode, task)
		return nil
	default:
		l.Error(err).Messagef("%s: %s", r.mode, task)
		return err
	}
}

func (r *Runner) doTask(engine *encryption.FileCrypt, task Task) error {
	fi, err := r.fsys.Stat(task.Src)
	if err != nil || !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %q", ErrNotFile, task.Src)
	}

	if r.fsys.Exists(task.Dest) {
		if r.skipExisting {
			return ErrSkipExisting
		}
		if !r.overwrite {
			return fmt.Errorf("%w: %q", ErrDestinationExists, task.Dest)
		}
	}

	if dir := filepath.Dir(task.Dest); dir != "" {
		if err := r.fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create destination directory %q: %w", dir, err)
		}
	}

	var cryptErr error
	switch r.mode {
	case ModeEncrypt:
		cryptErr = engine.Encrypt(task.Src, task.Dest)
	case ModeDecrypt:
		cryptErr = engine.Decrypt(task.Src, task.Dest)
	default:
		return fmt.Errorf("unsupported mode %q", r.mode)
	}

	if cryptErr != nil {
		// A failed stream leaves a partial destination behind; remove it so
		// no truncated artifact survives the error.
		if r.fsys.Exists(task.Dest) {
			if rmErr := r.fsys.Remove(task.Dest); rmErr != nil {
				log.Error(rmErr).Messagef("unable to remove partial destination %q", task.Dest)
			}
		}
		return cryptErr
	}

	return nil
}
