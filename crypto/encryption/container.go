// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Container layout:
//
//	offset  length      field
//	0       5           MAGIC   "KELSI"
//	5       1           VERSION 0x01 | 0x02
//	6       32          SALT
//	38      24          SIZE_REC (v2 only) AEAD(big-endian u64 container length)
//	H       N*(BS+16)   CHUNKS  BS = 131072, last chunk 0..BS plaintext bytes
const (
	// BlockSize is the plaintext chunk length of the container body.
	BlockSize = 128 * 1024

	// VersionLegacy identifies containers without a size record. Readable
	// for backward compatibility, never written.
	VersionLegacy byte = 0x01
	// VersionCurrent identifies containers carrying the encrypted size
	// record. Always written.
	VersionCurrent byte = 0x02

	sizeRecordLength = 8 + TagLength
	headerLengthV1   = len(containerMagic) + 1 + SaltLength
	headerLengthV2   = headerLengthV1 + sizeRecordLength
)

const containerMagic = "KELSI"

// ContainerSize returns the on-disk length of a version 2 container holding
// plainSize plaintext bytes. An empty file yields a header-only container.
func ContainerSize(plainSize int64) int64 {
	chunks := (plainSize + BlockSize - 1) / BlockSize
	return int64(headerLengthV2) + plainSize + chunks*TagLength
}

// Seal reads exactly srcLen plaintext bytes from src and writes the complete
// version 2 container to dst. A fresh salt is drawn for every call, so two
// seals of the same plaintext never produce the same container.
func (fc *FileCrypt) Seal(dst io.Writer, src io.Reader, srcLen int64) error {
	// Check arguments
	if dst == nil {
		return errors.New("writer must not be nil")
	}
	if src == nil {
		return errors.New("reader must not be nil")
	}
	if srcLen < 0 {
		return errors.New("source length must not be negative")
	}

	secret, err := fc.secretBytes()
	if err != nil {
		return err
	}

	salt, err := NewSalt()
	if err != nil {
		return err
	}

	sc, err := newStreamCipher(secret, salt)
	if err != nil {
		return err
	}

	// Header
	if _, err := dst.Write([]byte(containerMagic)); err != nil {
		return fmt.Errorf("unable to write container magic: %w", err)
	}
	if _, err := dst.Write([]byte{VersionCurrent}); err != nil {
		return fmt.Errorf("unable to write container version: %w", err)
	}
	if _, err := dst.Write(salt); err != nil {
		return fmt.Errorf("unable to write container salt: %w", err)
	}

	// Size record. Sealing it first pins the total container length under
	// the first nonce; body chunks start at nonce one.
	binary.BigEndian.PutUint64(fc.buf[:8], uint64(ContainerSize(srcLen)))
	n, err := sc.seal(fc.buf, 8)
	if err != nil {
		return err
	}
	if _, err := dst.Write(fc.buf[:n]); err != nil {
		return fmt.Errorf("unable to write container size record: %w", err)
	}

	// Body
	remaining := srcLen
	for {
		_, rerr := io.ReadFull(src, fc.buf[:BlockSize])
		switch {
		case rerr == nil:
			n, err := sc.seal(fc.buf, BlockSize)
			if err != nil {
				return err
			}
			if _, err := dst.Write(fc.buf[:n]); err != nil {
				return fmt.Errorf("unable to write container chunk: %w", err)
			}
			remaining -= BlockSize
		case errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF):
			// Final short chunk. A source ending exactly on a chunk
			// boundary emits no terminal frame.
			if remaining != 0 {
				if remaining < 0 || remaining >= BlockSize {
					return fmt.Errorf("source length changed during seal: %w", rerr)
				}
				n, err := sc.seal(fc.buf, int(remaining))
				if err != nil {
					return err
				}
				if _, err := dst.Write(fc.buf[:n]); err != nil {
					return fmt.Errorf("unable to write container chunk: %w", err)
				}
			}
			return nil
		default:
			return fmt.Errorf("unable to read plaintext source: %w", rerr)
		}
	}
}

// Open reads a whole container of srcLen bytes from src and writes the
// recovered plaintext to dst. Version 1 and version 2 containers are
// accepted; for version 2 the committed container length is verified before
// any plaintext is produced. Any authentication failure aborts with ErrOpen
// and the partially written destination must be discarded by the caller.
func (fc *FileCrypt) Open(dst io.Writer, src io.Reader, srcLen int64) error {
	// Check arguments
	if dst == nil {
		return errors.New("writer must not be nil")
	}
	if src == nil {
		return errors.New("reader must not be nil")
	}

	secret, err := fc.secretBytes()
	if err != nil {
		return err
	}

	// Fixed header
	hdr := fc.buf[:headerLengthV1]
	if _, err := io.ReadFull(src, hdr); err != nil {
		return fmt.Errorf("unable to read container header: %w", err)
	}
	if !bytes.Equal(hdr[:len(containerMagic)], []byte(containerMagic)) {
		return ErrMagicMismatch
	}

	version := hdr[len(containerMagic)]
	var headerLen int
	switch version {
	case VersionLegacy:
		headerLen = headerLengthV1
	case VersionCurrent:
		headerLen = headerLengthV2
	default:
		return &VersionError{Version: version}
	}

	salt := make([]byte, SaltLength)
	copy(salt, hdr[len(containerMagic)+1:])

	sc, err := newStreamCipher(secret, salt)
	if err != nil {
		return err
	}

	// Size record: the length-binding check. An adversary truncating or
	// extending the container must also forge a tag over the new length.
	if version == VersionCurrent {
		rec := fc.buf[:sizeRecordLength]
		if _, err := io.ReadFull(src, rec); err != nil {
			return fmt.Errorf("unable to read container size record: %w", err)
		}
		if _, err := sc.open(rec); err != nil {
			return err
		}
		declared := binary.BigEndian.Uint64(rec[:8])
		if declared != uint64(srcLen) {
			return &SizeMismatchError{Actual: uint64(srcLen), Declared: declared}
		}
	}

	// Body
	const frame = BlockSize + TagLength
	bodyLen := srcLen - int64(headerLen)
	for {
		_, rerr := io.ReadFull(src, fc.buf[:frame])
		switch {
		case rerr == nil:
			n, err := sc.open(fc.buf[:frame])
			if err != nil {
				return err
			}
			if _, err := dst.Write(fc.buf[:n]); err != nil {
				return fmt.Errorf("unable to write plaintext chunk: %w", err)
			}
			bodyLen -= frame
		case errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF):
			// Terminal short frame. bodyLen reaching zero on a frame
			// boundary ends the stream; a version 1 container truncated
			// on that boundary is indistinguishable from a complete one.
			if bodyLen != 0 {
				if bodyLen < TagLength || bodyLen > frame {
					return ErrOpen
				}
				n, err := sc.open(fc.buf[:bodyLen])
				if err != nil {
					return err
				}
				if _, err := dst.Write(fc.buf[:n]); err != nil {
					return fmt.Errorf("unable to write plaintext chunk: %w", err)
				}
			}
			return nil
		default:
			return fmt.Errorf("unable to read container body: %w", rerr)
		}
	}
}
