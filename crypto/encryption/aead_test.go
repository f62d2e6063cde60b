// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_incrNonce(t *testing.T) {
	t.Parallel()

	nonce := make([]byte, 4)
	for i := 1; i < 1024; i++ {
		incrNonce(nonce)
		got := int(binary.LittleEndian.Uint32(nonce))
		require.Equal(t, i, got)
	}
}

func Test_incrNonce_Carry(t *testing.T) {
	t.Parallel()

	nonce := []byte{0xFF, 0xFF, 0x00}
	incrNonce(nonce)
	require.Equal(t, []byte{0x00, 0x00, 0x01}, nonce)

	// Full wrap
	full := []byte{0xFF, 0xFF, 0xFF}
	incrNonce(full)
	require.Equal(t, []byte{0x00, 0x00, 0x00}, full)
}

func Test_newStreamCipher_SaltLength(t *testing.T) {
	t.Parallel()

	_, err := newStreamCipher([]byte("secret"), make([]byte, 16))
	require.Error(t, err)

	var saltErr *SaltLengthError
	require.ErrorAs(t, err, &saltErr)
	require.Equal(t, SaltLength, saltErr.Expected)
}

func TestStreamCipher_SealOpen(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	sc, err := newStreamCipher(make([]byte, 8), salt)
	require.NoError(t, err)

	buf := make([]byte, 128)
	const plainLen = 24

	outLen, err := sc.seal(buf, plainLen)
	require.NoError(t, err)
	require.Equal(t, plainLen+TagLength, outLen)

	// Bytes beyond the returned length are untouched.
	for _, b := range buf[outLen:] {
		require.Zero(t, b)
	}

	got, err := sc.open(buf[:outLen])
	require.NoError(t, err)
	require.Equal(t, plainLen, got)
	for _, b := range buf[:plainLen] {
		require.Zero(t, b)
	}
}

func TestStreamCipher_ZeroSize(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	sc, err := newStreamCipher(make([]byte, 8), salt)
	require.NoError(t, err)

	buf := make([]byte, 128)

	outLen, err := sc.seal(buf, 0)
	require.NoError(t, err)
	require.Equal(t, TagLength, outLen)

	got, err := sc.open(buf[:outLen])
	require.NoError(t, err)
	require.Equal(t, 0, got)
}

func TestStreamCipher_BufferTooSmall(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	sc, err := newStreamCipher(make([]byte, 8), salt)
	require.NoError(t, err)

	_, err = sc.seal(make([]byte, 32), 24)
	require.Error(t, err)

	var bufErr *SealBufferError
	require.ErrorAs(t, err, &bufErr)
	require.Equal(t, 24+TagLength, bufErr.Need)
}

func TestStreamCipher_NonceSequence(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	sc, err := newStreamCipher([]byte("secret"), salt)
	require.NoError(t, err)

	buf := make([]byte, 64)
	const rounds = 300
	for i := 0; i < rounds; i++ {
		_, err := sc.seal(buf, 16)
		require.NoError(t, err)
	}

	// The seal counter is a little-endian integer equal to the operation count.
	require.Equal(t, uint64(rounds), binary.LittleEndian.Uint64(sc.sealNonce[:8]))
	require.Zero(t, binary.LittleEndian.Uint32(sc.sealNonce[8:]))

	// The open counter is independent and still at zero.
	require.Equal(t, [NonceLength]byte{}, sc.openNonce)
}

func TestStreamCipher_CrossInstance(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	sc1, err := newStreamCipher(make([]byte, 8), salt)
	require.NoError(t, err)

	buf1 := make([]byte, 128)
	buf2 := make([]byte, 128)
	for i := range buf2[:37] {
		buf2[i] = 1
	}

	_, err = sc1.seal(buf1, 24)
	require.NoError(t, err)
	outLen2, err := sc1.seal(buf2, 37)
	require.NoError(t, err)

	// A fresh opener expects nonce zero; the second frame does not match.
	sc2, err := newStreamCipher(make([]byte, 8), salt)
	require.NoError(t, err)
	_, err = sc2.open(buf2[:outLen2])
	require.ErrorIs(t, err, ErrOpen)
}

func TestStreamCipher_WrongSecret(t *testing.T) {
	t.Parallel()

	salt, err := NewSalt()
	require.NoError(t, err)

	sealer, err := newStreamCipher([]byte("hunter2"), salt)
	require.NoError(t, err)

	buf := make([]byte, 64)
	copy(buf, "hello")
	outLen, err := sealer.seal(buf, 5)
	require.NoError(t, err)

	opener, err := newStreamCipher([]byte("Hunter2"), salt)
	require.NoError(t, err)
	_, err = opener.open(buf[:outLen])
	require.ErrorIs(t, err, ErrOpen)
}
