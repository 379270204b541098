package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Variables so tests can lower the cost.
var (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 4
)

const (
	keyLen  = 32
	saltLen = 16
)

// HashPassword returns hex(salt || argon2id(password, salt))
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)

	out := make([]byte, 0, saltLen+keyLen)
	out = append(out, salt...)
	out = append(out, key...)
	return hex.EncodeToString(out), nil
}

// VerifyPassword reports whether password matches a HashPassword result
func VerifyPassword(password, encoded string) bool {
	stored, err := hex.DecodeString(encoded)
	if err != nil || len(stored) != saltLen+keyLen {
		return false
	}

	salt, key := stored[:saltLen], stored[saltLen:]
	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLen)
	return subtle.ConstantTimeCompare(key, computed) == 1
}
