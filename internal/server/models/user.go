// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
)

// PasswordHasher is the part of auth.Hasher the entity needs.
type PasswordHasher interface {
	Hash(plain []byte) (string, error)
}

// Token is one live session of a user.
type Token struct {
	Access string
	Token  string
}

// User is an account. PasswordHash is never the plaintext and is never
// serialized to clients; Tokens is the session list, oldest first.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Tokens       []Token
	CreatedAt    time.Time
}

// SetPassword hashes plain and stores the digest. It is the only place a
// password is hashed, so saves that don't touch the password never re-hash.
func (u *User) SetPassword(h PasswordHasher, plain []byte) error {
	digest, err := h.Hash(plain)
	if err != nil {
		return err
	}
	u.PasswordHash = digest
	return nil
}

// AddToken appends an auth session.
func (u *User) AddToken(token string) {
	u.Tokens = append(u.Tokens, Token{Access: common.AccessAuth, Token: token})
}

// RemoveToken drops the entry with exactly this token string. Absent tokens
// are ignored.
func (u *User) RemoveToken(token string) {
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
}

// HasToken reports whether token is a live auth session of u.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t.Access == common.AccessAuth && t.Token == token {
			return true
		}
	}
	return false
}

// ListTokens returns a copy of the session list.
func (u *User) ListTokens() []Token {
	out := make([]Token, len(u.Tokens))
	copy(out, u.Tokens)
	return out
}
