// Copyright (c) 2026 Petbox. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. RFC 9106 low-memory profile — a deliberate balance
// between security and CPU utilization during registration spikes.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// ErrMalformedHash is returned when a stored hash does not follow the
// standard $argon2id$... encoding.
var ErrMalformedHash = errors.New("sec: malformed password hash")

// HashPassword hashes a plain-text password using Argon2id.
//
// The result is self-describing (parameters and salt are embedded), so
// parameter upgrades only affect newly hashed passwords.
func HashPassword(plainTextPassword string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plainTextPassword), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// CheckPasswordHash compares a plain-text password with its hashed version
// using a constant-time comparison.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	salt, expectedKey, params, err := decodeHash(existingHash)
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(plainTextPassword), salt, params.time, params.memory, params.threads, uint32(len(expectedKey)))
	return subtle.ConstantTimeCompare(key, expectedKey) == 1
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// decodeHash parses the $argon2id$v=..$m=..,t=..,p=..$salt$key encoding.
func decodeHash(encoded string) (salt, key []byte, params argonParams, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, params, ErrMalformedHash
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, params, ErrMalformedHash
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, ErrMalformedHash
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, params, ErrMalformedHash
	}

	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, params, ErrMalformedHash
	}

	return salt, key, params, nil
}
