// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

package encryption

import (
	"fmt"

	"github.com/DataDog/kelsi/generator/randomness"
)

// SaltLength is the container salt field length. It matches the recommended
// HMAC key length for SHA-256 so the HKDF extract step runs at full strength.
const SaltLength = 32

// NewSalt draws a fresh random salt from the system CSPRNG. A salt is drawn
// once per encrypted file and stored verbatim in the container header.
func NewSalt() ([]byte, error) {
	salt, err := randomness.Bytes(SaltLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenSalt, err)
	}
	return salt, nil
}

// checkSalt validates the length of a salt read back from a container header.
func checkSalt(salt []byte) error {
	if len(salt) != SaltLength {
		return &SaltLengthError{Expected: SaltLength}
	}
	return nil
}
