// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/DataDog/kelsi/log"
)

// FileCrypt is the file container engine. It owns the caller secret, locked
// in memory, and one reusable working buffer sized for a full chunk and its
// tag. The buffer makes an instance stateful: never share one between
// goroutines, use Clone to give each worker its own.
type FileCrypt struct {
	secret *memguard.LockedBuffer
	secLen int
	buf    []byte
}

// Compile time interface compliance checks.
var (
	_ FileAEAD   = (*FileCrypt)(nil)
	_ StreamAEAD = (*FileCrypt)(nil)
)

// NewFileCrypt builds an engine around the given secret. The engine takes
// ownership of the slice: its content is moved into a locked buffer and the
// original is wiped. Callers needing the secret afterwards must pass a copy.
// An empty secret is valid.
func NewFileCrypt(secret []byte) *FileCrypt {
	// The locked buffer is padded by one byte because it cannot be empty,
	// while the secret can.
	padded := make([]byte, len(secret)+1)
	secLen := copy(padded, secret)
	memguard.WipeBytes(secret)

	return &FileCrypt{
		secret: memguard.NewBufferFromBytes(padded),
		secLen: secLen,
		buf:    make([]byte, BlockSize+TagLength),
	}
}

// Clone returns an engine sharing this engine's locked secret with an
// independent working buffer. Clones are cheap and are the intended way to
// run one engine per worker. Destroying the secret via Close affects every
// clone.
func (fc *FileCrypt) Clone() *FileCrypt {
	return &FileCrypt{
		secret: fc.secret,
		secLen: fc.secLen,
		buf:    make([]byte, BlockSize+TagLength),
	}
}

// secretBytes exposes the locked secret for key derivation.
func (fc *FileCrypt) secretBytes() ([]byte, error) {
	if !fc.secret.IsAlive() {
		return nil, errors.New("engine secret has been destroyed")
	}
	return fc.secret.Bytes()[:fc.secLen], nil
}

// Close wipes and releases the locked secret. The engine and all its clones
// are unusable afterwards.
func (fc *FileCrypt) Close() {
	fc.secret.Destroy()
}

// Encrypt seals the src file into a version 2 container at dest. On error the
// partially written destination file is left in place; the caller owns its
// removal.
func (fc *FileCrypt) Encrypt(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open source file %q: %w", src, err)
	}
	defer closeFile(in)

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("unable to stat source file %q: %w", src, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("unable to create destination file %q: %w", dest, err)
	}

	w := bufio.NewWriter(out)
	if err := fc.Seal(w, bufio.NewReader(in), fi.Size()); err != nil {
		closeFile(out)
		return err
	}
	if err := w.Flush(); err != nil {
		closeFile(out)
		return fmt.Errorf("unable to flush destination file %q: %w", dest, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("unable to close destination file %q: %w", dest, err)
	}
	return nil
}

// Decrypt opens the src container and writes the recovered plaintext to
// dest. On error the partially written destination file is left in place; the
// caller owns its removal.
func (fc *FileCrypt) Decrypt(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open source file %q: %w", src, err)
	}
	defer closeFile(in)

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("unable to stat source file %q: %w", src, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("unable to create destination file %q: %w", dest, err)
	}

	w := bufio.NewWriter(out)
	if err := fc.Open(w, bufio.NewReader(in), fi.Size()); err != nil {
		closeFile(out)
		return err
	}
	if err := w.Flush(); err != nil {
		closeFile(out)
		return fmt.Errorf("unable to flush destination file %q: %w", dest, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("unable to close destination file %q: %w", dest, err)
	}
	return nil
}

func closeFile(f *os.File) {
	if err := f.Close(); err != nil {
		log.Error(err).Messagef("unable to successfully close the file %q", f.Name())
	}
}
