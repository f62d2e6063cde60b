// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package encryption implements the KELSI authenticated file container.
//
// A container starts with a fixed header (magic, version, per-file random
// salt), followed, since version 2, by an encrypted record committing the
// total ciphertext length, and then by the file body split into fixed size
// chunks. Every chunk is an independent AES-256-GCM seal under a key derived
// from the caller secret and the container salt, with a strictly sequential
// nonce counter, so chunk reordering, splicing, corruption and (since v2)
// truncation are all detected. Every chunk is authenticated before its own
// plaintext is emitted; chunks preceding a failing one have already been
// written when the error is returned.
package encryption

import (
	"errors"
	"fmt"
	"io"
)

// FileEncryptor converts a plaintext file into a KELSI container.
type FileEncryptor interface {
	// Encrypt reads the src file and writes its sealed container to dest.
	Encrypt(src, dest string) error
}

// FileDecryptor converts a KELSI container back into the plaintext file.
type FileDecryptor interface {
	// Decrypt reads the src container and writes the recovered plaintext to dest.
	Decrypt(src, dest string) error
}

// FileAEAD represents all container operations bound to filesystem paths.
type FileAEAD interface {
	FileEncryptor
	FileDecryptor
}

// StreamSealer represents container encryption over generic streams.
type StreamSealer interface {
	// Seal reads exactly srcLen plaintext bytes from src and writes the
	// complete container to dst.
	Seal(dst io.Writer, src io.Reader, srcLen int64) error
}

// StreamOpener represents container decryption over generic streams.
type StreamOpener interface {
	// Open reads a whole container of srcLen bytes from src and writes the
	// recovered plaintext to dst.
	Open(dst io.Writer, src io.Reader, srcLen int64) error
}

// StreamAEAD represents all container operations over generic streams.
type StreamAEAD interface {
	StreamSealer
	StreamOpener
}

// -----------------------------------------------------------------------------

var (
	// ErrGenSalt is raised when the system entropy source is unavailable.
	ErrGenSalt = errors.New("generate salt error")
	// ErrOpen is raised on any authentication failure: bad tag, wrong secret,
	// tampered ciphertext, out-of-order chunk or truncation past the size
	// record. No plaintext is produced.
	ErrOpen = errors.New("crypto decrypt error")
	// ErrSeal is raised when the encryption primitive fails.
	ErrSeal = errors.New("crypto encrypt error")
	// ErrMagicMismatch is raised when the container does not start with the
	// KELSI magic bytes.
	ErrMagicMismatch = errors.New("magic not match")
)

// SaltLengthError reports a container salt field of the wrong length.
type SaltLengthError struct {
	Expected int
}

func (e *SaltLengthError) Error() string {
	return fmt.Sprintf("salt length not match, need %d", e.Expected)
}

// SealBufferError reports a seal output buffer too small to receive the
// ciphertext and its tag. It flags a programming error in the codec.
type SealBufferError struct {
	Need int
}

func (e *SealBufferError) Error() string {
	return fmt.Sprintf("crypto seal inout buffer too small, need %d", e.Need)
}

// VersionError reports an unsupported container version byte.
type VersionError struct {
	Version byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("version '%d' not support", e.Version)
}

// SizeMismatchError reports a container whose on-disk length does not match
// the length committed inside its encrypted size record.
type SizeMismatchError struct {
	Actual   uint64
	Declared uint64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("file size not match, %d != %d", e.Actual, e.Declared)
}
