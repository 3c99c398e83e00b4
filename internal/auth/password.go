// Package auth: password hashing.
//
// New hashes use Argon2id, a memory-hard function: cracking it needs both CPU
// time and a large block of RAM per guess, which defeats GPU farms far better
// than bcrypt does.
//
// Hash format (PHC string, self-describing, stored as-is in the database):
//
//	$argon2id$v=19$m=65536,t=3,p=2$<base64 salt>$<base64 digest>
//	 ^         ^    ^       ^   ^
//	 |         |    |       |   threads
//	 |         |    |       iterations
//	 |         |    memory in KiB
//	 |         argon2 version
//	 algorithm
//
// Hashes written before the switch to Argon2id are bcrypt strings
// ($2a$/$2b$/$2y$). Verify still accepts them.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/taskflow/internal/apperror"
)

// Argon2Params controls the Argon2id work factors.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follows the RFC 9106 second recommended option,
// trimmed to 64 MiB so a small server can absorb a burst of sign-ins.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// PasswordService hashes and verifies passwords.
//
// It's a struct (not free functions) so that the work factors can be
// injected in tests; a 64 MiB hash per test case adds up quickly.
type PasswordService struct {
	params Argon2Params
}

// NewPasswordService creates a PasswordService with DefaultArgon2Params.
func NewPasswordService() *PasswordService {
	return &PasswordService{params: DefaultArgon2Params}
}

// NewPasswordServiceWithParams creates a PasswordService with custom work
// factors. Tests in other packages use it with a tiny memory cost.
//
// Do NOT use weak parameters in production.
func NewPasswordServiceWithParams(p Argon2Params) *PasswordService {
	return &PasswordService{params: p}
}

// Hash hashes plaintext with Argon2id and a fresh random salt.
//
// Two calls with the same plaintext return different strings. The only
// failure is the OS entropy source, reported as apperror.ErrHashing.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	salt := make([]byte, p.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", apperror.Hashing(fmt.Errorf("auth: reading salt: %w", err))
	}

	digest := argon2.IDKey([]byte(plaintext), salt,
		p.params.Iterations, p.params.Memory, p.params.Parallelism, p.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.params.Memory, p.params.Iterations, p.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether plaintext matches the stored hash.
//
// It never returns an error: a malformed hash is just "no match", so a
// corrupt row and a wrong password look identical from the outside.
// The comparison is constant-time.
func (p *PasswordService) Verify(plaintext, encoded string) bool {
	if isBcrypt(encoded) {
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
	}

	params, salt, digest, ok := decodeArgon2id(encoded)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(plaintext), salt,
		params.Iterations, params.Memory, params.Parallelism, uint32(len(digest)))

	return subtle.ConstantTimeCompare(computed, digest) == 1
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// decodeArgon2id parses a PHC string. Parameters come from the string, not
// from the service, so hashes survive a change of DefaultArgon2Params.
func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, bool) {
	var params Argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, digest
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return params, nil, nil, false
	}
	if params.Memory == 0 || params.Iterations == 0 || params.Parallelism == 0 {
		return params, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, false
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return params, nil, nil, false
	}

	return params, salt, digest, true
}
