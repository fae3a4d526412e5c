package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// MaxPasswordBytes is the longest password bcrypt accepts. The limit is in
// bytes, not characters.
const MaxPasswordBytes = 72

var (
	ErrUnknownHasher   = errors.New("unknown password hasher")
	ErrPasswordTooLong = errors.New("password too long")
)

// Hasher turns a plaintext password into a salted, slow digest and checks
// candidates against it. Verify never fails loudly: any malformed digest is
// simply a mismatch.
type Hasher interface {
	Hash(plain []byte) (string, error)
	Verify(plain []byte, digest string) bool
}

// NewHasher returns the hasher registered under name with default costs.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", HasherBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case HasherArgon2id:
		return DefaultArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}

type BcryptHasher struct {
	Cost int
}

func (b BcryptHasher) Hash(plain []byte) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword(plain, b.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (b BcryptHasher) Verify(plain []byte, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), plain) == nil
}

// Argon2Hasher produces PHC strings:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Verification uses the parameters stored in the digest, so costs can be
// raised without invalidating existing hashes.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	SaltLen int
	KeyLen  uint32
}

func DefaultArgon2Hasher() Argon2Hasher {
	return Argon2Hasher{Time: 1, Memory: 64 * 1024, Threads: 4, SaltLen: 16, KeyLen: 32}
}

func (a Argon2Hasher) Hash(plain []byte) (string, error) {
	salt := common.GenerateRandByteArray(a.SaltLen)
	key := argon2.IDKey(plain, salt, a.Time, a.Memory, a.Threads, a.KeyLen)
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Time, a.Threads, enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

func (a Argon2Hasher) Verify(plain []byte, digest string) bool {
	parts := strings.Split(digest, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != HasherArgon2id {
		return false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if memory == 0 || time == 0 || threads == 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false
	}
	candidate := argon2.IDKey(plain, salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}
