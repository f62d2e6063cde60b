// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/awnumar/memguard"

	"golang.org/x/crypto/hkdf"
)

const (
	keyLength = 32
	// NonceLength is the AES-256-GCM nonce length used by the container.
	NonceLength = 12
	// TagLength is the GCM authenticator length appended to every chunk.
	TagLength = 16
)

// hkdfInfo is the fixed HKDF expand label. Changing it breaks compatibility
// with every existing container.
var hkdfInfo = []byte("hello kelsi")

// streamCipher is the stateful AEAD engine of one container operation. It
// carries one independent nonce counter per direction; counters start at zero
// and advance once per successful seal or open. A streamCipher instance must
// never be shared between goroutines.
type streamCipher struct {
	aead      cipher.AEAD
	sealNonce [NonceLength]byte
	openNonce [NonceLength]byte
}

// newStreamCipher derives the container key from (secret, salt) with
// HKDF-SHA256 and installs it into an AES-256-GCM cipher. The derived key is
// wiped from memory before returning.
func newStreamCipher(secret, salt []byte) (*streamCipher, error) {
	// Check arguments
	if err := checkSalt(salt); err != nil {
		return nil, err
	}

	// Derive the container key. Extract-then-expand with the salt as the
	// extract key, per RFC 5869.
	key := make([]byte, keyLength)
	kdf := hkdf.New(sha256.New, secret, salt, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("unable to derive container key: %w", err)
	}
	defer memguard.WipeBytes(key)

	// Initialize block cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize block cipher: %w", err)
	}

	// Initialize AEAD
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize AEAD cipher: %w", err)
	}

	return &streamCipher{aead: aead}, nil
}

// seal encrypts the first inLen bytes of inout in place, writing the tag at
// [inLen, inLen+TagLength), and advances the seal nonce. It returns the
// ciphertext length inLen+TagLength.
func (c *streamCipher) seal(inout []byte, inLen int) (int, error) {
	outLen := inLen + TagLength
	if inLen < 0 || len(inout) < outLen {
		return 0, &SealBufferError{Need: outLen}
	}

	c.aead.Seal(inout[:0], c.sealNonce[:], inout[:inLen], nil)
	incrNonce(c.sealNonce[:])

	return outLen, nil
}

// open decrypts the whole inout slice in place and advances the open nonce.
// On success the first len(inout)-TagLength bytes hold the plaintext. On any
// authentication failure ErrOpen is returned and the buffer content must be
// discarded.
func (c *streamCipher) open(inout []byte) (int, error) {
	if _, err := c.aead.Open(inout[:0], c.openNonce[:], inout, nil); err != nil {
		return 0, ErrOpen
	}
	incrNonce(c.openNonce[:])

	return len(inout) - TagLength, nil
}

// incrNonce advances a nonce counter by one, little-endian with carry. The
// 96-bit space cannot be exhausted in practice so overflow of the final byte
// simply wraps.
func incrNonce(nonce []byte) {
	for i := range nonce {
		nonce[i]++
		if nonce[i] != 0 {
			return
		}
	}
}
