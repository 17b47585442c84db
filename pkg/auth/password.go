package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. The digest records the parameters it was produced
// with, so these can be raised later without invalidating stored digests.
const (
	argonMemory      uint32 = 64 * 1024
	argonTime        uint32 = 1
	argonParallelism uint8  = 4
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

// PasswordHasher produces and verifies salted argon2id digests in PHC string
// format ($argon2id$v=19$m=...,t=...,p=...$salt$hash). A fresh random salt is
// drawn per Hash call, so hashing the same password twice yields different
// digests.
type PasswordHasher struct{}

// NewPasswordHasher creates a password hasher with the package defaults.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash derives a salted digest from the plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether digest was produced from plaintext. The comparison
// is constant time. A malformed digest verifies as false rather than
// erroring, so a corrupt database row behaves like a wrong password.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	memory, timeCost, parallelism, salt, key, err := parseDigest(digest)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), salt, timeCost, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

func parseDigest(digest string) (memory, timeCost uint32, parallelism uint8, salt, key []byte, err error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed digest")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed version: %w", err)
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var par uint32
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &par); err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed parameters: %w", err)
	}
	if memory == 0 || timeCost == 0 || par == 0 || par > 255 {
		return 0, 0, 0, nil, nil, fmt.Errorf("parameters out of range")
	}
	parallelism = uint8(par)

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed salt: %w", err)
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, fmt.Errorf("malformed key")
	}
	return memory, timeCost, parallelism, salt, key, nil
}
