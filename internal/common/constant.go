// Package common contains shared constants, sentinel errors and small helpers
// used across Tabliya components.
package common

// Cookie names carrying the signed access and refresh tokens.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// Random token sizes, in bytes before hex encoding.
const (
	RefreshTokenSize      = 40
	VerificationTokenSize = 40
	ResetTokenSize        = 70
)
