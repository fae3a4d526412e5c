// Package auth holds the credential primitives: the signed session token
// codec and the password hashers.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims binds a token to a user (Subject) and a purpose (Access).
type Claims struct {
	jwt.RegisteredClaims
	Access string `json:"access"`
}

// Codec issues and verifies HS256 tokens with a secret fixed at startup.
// Tokens carry no expiry; revocation is the session list's job.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, now: time.Now}
}

// Issue signs a token for userID with the given purpose. Every token gets a
// random jti, so two logins within the same second still differ.
func (c *Codec) Issue(userID, access string) (string, error) {
	if userID == "" {
		return "", errors.New("empty subject")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
		Access: access,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify checks the signature and decodes the claims. Every failure,
// including malformed input, comes back as common.ErrInvalidToken.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Subject == "" || claims.Access != common.AccessAuth {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// GetUserIDFromToken verifies tokenString and returns its subject.
func (c *Codec) GetUserIDFromToken(tokenString string) (string, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
