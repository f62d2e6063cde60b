// SPDX-FileCopyrightText: 2023-present Datadog, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package password provides a library for generating high-entropy random
// password strings via the crypto/rand package.
package password

import (
	"errors"
	"fmt"

	"github.com/sethvargo/go-password/password"
)

// Profile holds password generation settings
type Profile struct {
	// Password total length.
	Length int
	// Digit count in generated password.
	NumDigits int
	// Symbol count in generated password.
	NumSymbol int
	// Allow/Disallow uppercase.
	NoUpper bool
	// Allow/Disallow character repetition.
	AllowRepeat bool
}

var (
	// ProfileParanoid defines 64 characters password with 10 symbol and 10 digits
	// with character repetition.
	ProfileParanoid = &Profile{Length: 64, NumDigits: 10, NumSymbol: 10, NoUpper: false, AllowRepeat: true}

	// ProfileNoSymbol defines 32 characters password 10 digits with character repetition.
	ProfileNoSymbol = &Profile{Length: 32, NumDigits: 10, NumSymbol: 0, NoUpper: false, AllowRepeat: true}

	// ProfileStrong defines 32 characters password with 10 symbols and 10 digits
	// with character repetition.
	ProfileStrong = &Profile{Length: 32, NumDigits: 10, NumSymbol: 10, NoUpper: false, AllowRepeat: true}
)

// FromProfile generates a random password from the given profile settings.
func FromProfile(p *Profile) (string, error) {
	// Check arguments
	if p == nil {
		return "", errors.New("unable to generate a password from a nil profile")
	}

	// Delegate to the generation library
	out, err := password.Generate(p.Length, p.NumDigits, p.NumSymbol, p.NoUpper, p.AllowRepeat)
	if err != nil {
		return "", fmt.Errorf("unable to generate a password: %w", err)
	}

	return out, nil
}

// Paranoid generates a 64 characters password with 10 symbols and 10 digits.
func Paranoid() (string, error) {
	return FromProfile(ProfileParanoid)
}

// NoSymbol generates a 32 characters password with 10 digits and no symbol.
func NoSymbol() (string, error) {
	return FromProfile(ProfileNoSymbol)
}

// Strong generates a 32 characters password with 10 symbols and 10 digits.
func Strong() (string, error) {
	return FromProfile(ProfileStrong)
}
