// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package randomness

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"io"
)

// NewReader returns a deterministic random source seeded with the given
// value. It encrypts an infinite stream of zeros with an AES-CTR keystream
// keyed from the seed, relying on the indistinguishability property of AES to
// produce random looking data.
//
// Use it to build reproducible test vectors. It must never replace the system
// CSPRNG for production randomness.
func NewReader(seed int64) io.Reader {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))

	block, _ := aes.NewCipher(key[:])
	return &streamReader{
		s: cipher.NewCTR(block, make([]byte, aes.BlockSize)),
	}
}

var _ io.Reader = (*streamReader)(nil)

// streamReader xors the cipher keystream over a zero stream.
type streamReader struct {
	s cipher.Stream
}

func (r *streamReader) Read(dst []byte) (n int, err error) {
	for i := range dst {
		dst[i] = 0
	}
	r.s.XORKeyStream(dst, dst)
	return len(dst), nil
}
