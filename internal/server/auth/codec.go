// Package auth contains the token codec, the signed cookie transport and
// password hashing used by the authentication flow.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. Access tokens carry only User, refresh tokens
// carry User and the session's RefreshToken value.
//
// No expiration is embedded. Sessions end by cookie max-age, logout or
// session invalidation.
type Claims struct {
	User         models.Principal `json:"user"`
	RefreshToken string           `json:"refreshToken,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens with a shared secret.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Sign serializes claims into a compact JWS.
func (c *Codec) Sign(claims *Claims) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(c.now())
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return s, nil
}

// Verify checks the signature and decodes the payload into claims.
// Only HS256 is accepted.
func (c *Codec) Verify(token string, claims *Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return common.ErrInvalidToken
	}
	return nil
}

func (c *Codec) SignAccess(p models.Principal) (string, error) {
	return c.Sign(&Claims{User: p})
}

func (c *Codec) SignRefresh(p models.Principal, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.New("empty refresh token")
	}
	return c.Sign(&Claims{User: p, RefreshToken: refreshToken})
}

// VerifyAccess rejects refresh tokens and payloads without a user id.
func (c *Codec) VerifyAccess(token string) (*models.Principal, error) {
	claims := &Claims{}
	if err := c.Verify(token, claims); err != nil {
		return nil, err
	}
	if claims.RefreshToken != "" || claims.User.UserID == "" {
		return nil, fmt.Errorf("%w: not an access token", common.ErrInvalidToken)
	}
	return &claims.User, nil
}

func (c *Codec) VerifyRefresh(token string) (*Claims, error) {
	claims := &Claims{}
	if err := c.Verify(token, claims); err != nil {
		return nil, err
	}
	if claims.RefreshToken == "" || claims.User.UserID == "" {
		return nil, fmt.Errorf("%w: not a refresh token", common.ErrInvalidToken)
	}
	return claims, nil
}
