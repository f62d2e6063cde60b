// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command kelsi encrypts and decrypts files using the KELSI container format.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/DataDog/kelsi"
	"github.com/DataDog/kelsi/config"
	"github.com/DataDog/kelsi/crypto/encryption"
	"github.com/DataDog/kelsi/generator/passphrase"
	"github.com/DataDog/kelsi/generator/password"
	"github.com/DataDog/kelsi/ioutil/atomic"
	"github.com/DataDog/kelsi/log"
	"github.com/DataDog/kelsi/tasker"
)

const usage = `Kelsi, encrypt your files.

Usage:
    kelsi encrypt [options] <src>... <dest>
    kelsi decrypt [options] <src>... <dest>
    kelsi passphrase [-words N] [-random] [-out FILE]
    kelsi version

Options:
    -skip           Skip existing destination files.
    -overwrite      Overwrite existing destination files.
    -hidden         Include hidden files.
    -dryrun         Only show what would be done.
    -parallel N     Worker count, 0 runs serially, -1 uses the CPU count.
    -debug          Enable debug logging.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	switch args[0] {
	case "encrypt":
		return runCrypt(tasker.ModeEncrypt, args[1:])
	case "decrypt":
		return runCrypt(tasker.ModeDecrypt, args[1:])
	case "passphrase":
		return runPassphrase(args[1:])
	case "version":
		fmt.Println(kelsi.Version)
		return 0
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", args[0], usage)
		return 1
	}
}

func runCrypt(mode tasker.Mode, args []string) int {
	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet(mode.String(), flag.ContinueOnError)
	skip := fs.Bool("skip", cfg.Skip, "skip existing destination files")
	overwrite := fs.Bool("overwrite", cfg.Overwrite, "overwrite existing destination files")
	hidden := fs.Bool("hidden", cfg.Hidden, "include hidden files")
	dryRun := fs.Bool("dryrun", false, "only show what would be done")
	parallel := fs.Int("parallel", cfg.Parallel, "worker count, 0 runs serially, negative uses the CPU count")
	debug := fs.Bool("debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	setupLogging(cfg, *debug)
	if *debug {
		kelsi.SetDevMode()
	}

	rest := fs.Args()
	if len(rest) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	srcs, dest := rest[:len(rest)-1], rest[len(rest)-1]

	tasks, err := tasker.Plan(nil, srcs, dest, *hidden)
	if err != nil {
		log.Error(err).Message("unable to plan tasks")
		return 1
	}

	log.Info().Messagef("Found %d files to %s", len(tasks), mode)
	if len(tasks) == 0 {
		return 0
	}

	secret, err := readSecret(mode == tasker.ModeEncrypt)
	if err != nil {
		log.Error(err).Message("unable to read password")
		return 1
	}

	engine := encryption.NewFileCrypt(secret)
	defer engine.Close()

	runner := tasker.NewRunner(engine, mode,
		tasker.WithSkipExisting(*skip),
		tasker.WithOverwrite(*overwrite),
		tasker.WithDryRun(*dryRun),
	)

	var failed int
	if *parallel == 0 {
		failed = runner.Run(tasks)
	} else {
		failed = runner.RunParallel(tasks, *parallel)
	}

	if failed > 0 {
		log.Info().Messagef("%d of %d files failed", failed, len(tasks))
		return 1
	}
	return 0
}

func runPassphrase(args []string) int {
	fs := flag.NewFlagSet("passphrase", flag.ContinueOnError)
	words := fs.Int("words", passphrase.StrongWordCount, "diceware word count")
	random := fs.Bool("random", false, "generate a random character password instead of a passphrase")
	out := fs.String("out", "", "write the result to the given file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	var (
		result string
		err    error
	)
	if *random {
		result, err = password.Strong()
	} else {
		result, err = passphrase.Diceware(*words)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *out != "" {
		if err := atomic.WriteFile(*out, strings.NewReader(result+"\n"), 0o600); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Println(result)
	return 0
}

// -----------------------------------------------------------------------------

func setupLogging(cfg *config.Config, debug bool) {
	threshold := log.LoggerLevel(log.InfoLevel)
	switch {
	case debug || cfg.Logging.Level == "debug":
		threshold = log.DebugLevel
	case cfg.Logging.Level == "error":
		threshold = log.ErrorLevel
	}

	var file *log.FileOutput
	if cfg.Logging.File != "" {
		file = &log.FileOutput{
			Path:         cfg.Logging.File,
			RotationSize: cfg.Logging.RotationSize,
			MaxBackups:   cfg.Logging.MaxBackups,
		}
	}

	log.SetFactory(log.NewLogrusFactory(threshold, file))
}

// readSecret prompts for the password on the controlling terminal, asking for
// a confirmation when sealing. Without a terminal one line is read from
// standard input.
func readSecret(confirm bool) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		r := bufio.NewReader(os.Stdin)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("unable to read password from stdin: %w", err)
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(os.Stderr, "        Password: ")
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("unable to read password: %w", err)
	}

	if confirm {
		fmt.Fprint(os.Stderr, "Confirm Password: ")
		again, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("unable to read password confirmation: %w", err)
		}
		if !bytes.Equal(pass, again) {
			return nil, errors.New("passwords you provided do not match")
		}
		for i := range again {
			again[i] = 0
		}
	}

	return pass, nil
}
