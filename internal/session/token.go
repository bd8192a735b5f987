// ABOUTME: Session token issuance as an HS256 JWT
// ABOUTME: Tokens are presence markers; claims are decoded only for display

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenSecret signs tokens when no secret is configured
const DefaultTokenSecret = "dragon-catalog-local"

// TokenIssuer mints the opaque token persisted on login
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// JWTIssuer signs tokens with HMAC-SHA256
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer creates an issuer. An empty secret falls back to DefaultTokenSecret.
func NewJWTIssuer(secret []byte) *JWTIssuer {
	if len(secret) == 0 {
		secret = []byte(DefaultTokenSecret)
	}
	return &JWTIssuer{secret: secret, now: time.Now}
}

// Issue returns a signed token for username
func (i *JWTIssuer) Issue(username string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(i.now()),
		ID:       uuid.NewString(),
		Issuer:   "dragon-catalog",
	})
	return token.SignedString(i.secret)
}

// TokenInfo is what can be read from a token without verifying it
type TokenInfo struct {
	Subject  string    `json:"subject,omitempty"`
	IssuedAt time.Time `json:"issued_at,omitempty"`
	ID       string    `json:"id,omitempty"`
	Opaque   bool      `json:"opaque"`
}

// Describe decodes token claims without verifying the signature. Tokens that
// are not JWTs are reported as opaque; they still count as a session.
func Describe(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, errors.New("empty token")
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{Opaque: true}, nil
	}
	info := TokenInfo{Subject: claims.Subject, ID: claims.ID}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	return info, nil
}
