// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package randomness provides cryptographically secure random value
// generation helpers.
package randomness

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Bytes generates a new byte slice of the given size.
func Bytes(size int) ([]byte, error) {
	bytes := make([]byte, size)
	_, err := io.ReadFull(rand.Reader, bytes)
	if err != nil {
		return nil, fmt.Errorf("error generating bytes: %w", err)
	}
	return bytes, nil
}
