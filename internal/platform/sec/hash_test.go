// Copyright (c) 2026 Petbox. All rights reserved.

package sec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Abcdef12")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"), "hash must be self-describing")
	assert.NotContains(t, hash, "Abcdef12")

	// Fresh salt every call: two hashes of the same password differ.
	other, err := HashPassword("Abcdef12")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("Abcdef12")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "correct password", password: "Abcdef12", hash: hash, want: true},
		{name: "wrong password", password: "Abcdef13", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "malformed hash", password: "Abcdef12", hash: "$argon2id$broken", want: false},
		{name: "empty hash", password: "Abcdef12", hash: "", want: false},
		{name: "bcrypt-style hash", password: "Abcdef12", hash: "$2a$10$abcdefghijklmnopqrstuv", want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, CheckPasswordHash(testCase.password, testCase.hash))
		})
	}
}

func TestCheckPasswordHash_UnicodePasswords(t *testing.T) {
	hash, err := HashPassword("mật-khẩu-bí-mật-1")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("mật-khẩu-bí-mật-1", hash))
	assert.False(t, CheckPasswordHash("mat-khau-bi-mat-1", hash))
}
