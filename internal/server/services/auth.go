// Package services contains server-side business logic. This file implements
// AuthService: registration with email verification, login and logout over a
// single server-side session per user, the cookie-based authentication gate,
// and password reset.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/dbx"
	"github.com/dmitrijs2005/tabliya/internal/logging"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repomanager"
)

// Client-facing messages of the auth flow.
const (
	MsgEmailTaken            = "This email is already registered."
	MsgInvalidEmailPassword  = "Invalid email or password."
	MsgNotVerified           = "Access denied. Please verify your email to continue. Check your inbox for the verification link."
	MsgInvalidCredentials    = "Invalid credentials."
	MsgAuthenticationInvalid = "Authentication Invalid"
	MsgVerificationFailed    = "Verification failed. The token is invalid or has already been used."
	MsgProvideEmail          = "Please provide valid email"
	MsgProvideAllValues      = "Please provide all values"
	MsgInvalidResetToken     = "Invalid or expired token."
)

// Notifier delivers account emails. Implementations must not block for long;
// a failure is logged by the caller and never fails the request.
type Notifier interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
}

// TokenPair holds the signed access and refresh tokens for the cookies.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IP        string
}

type ResetPasswordInput struct {
	Email    string
	Token    string
	Password string
}

// Identity is an authenticated principal. Tokens is set when the tokens were
// re-issued and the caller must attach fresh cookies.
type Identity struct {
	User   models.Principal
	Tokens *TokenPair
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	notifier    Notifier
	logger      logging.Logger
	resetTTL    time.Duration
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, n Notifier,
	logger logging.Logger, resetTTL time.Duration) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		codec:       codec,
		notifier:    n,
		logger:      logger.With("module", "auth"),
		resetTTL:    resetTTL,
		now:         time.Now,
	}
}

// Register creates an unverified customer and emails a verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, common.BadRequest(MsgEmailTaken)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := common.MakeRandHexString(common.VerificationTokenSize)
	if err != nil {
		return nil, fmt.Errorf("error generating verification token: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{
		Name:              in.Name,
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              models.RoleCustomer,
		VerificationToken: token,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.notifier.SendVerification(ctx, u.Email, u.Name, token); err != nil {
		s.logger.Error(ctx, "error sending verification email", "email", u.Email, "error", err)
	}
	return u, nil
}

// VerifyEmail consumes the verification token. A token can be used once.
func (s *AuthService) VerifyEmail(ctx context.Context, email, token string) error {
	repo := s.repomanager.Users(s.db)

	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(MsgVerificationFailed)
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if u.VerificationToken == "" || !equal(u.VerificationToken, token) {
		return common.NotFound(MsgVerificationFailed)
	}

	now := s.now()
	u.IsVerified = true
	u.VerifiedAt = &now
	u.VerificationToken = ""
	if err := repo.Update(ctx, u); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// Login checks the credentials and returns tokens bound to the user's single
// session. An existing valid session keeps its refresh value; a revoked one
// blocks the login.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Identity, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthenticated(MsgInvalidEmailPassword)
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if !auth.ComparePassword(u.PasswordHash, in.Password) {
		return nil, common.Unauthenticated(MsgInvalidEmailPassword)
	}
	if !u.IsVerified {
		return nil, common.Unauthenticated(MsgNotVerified)
	}

	refresh, err := common.MakeRandHexString(common.RefreshTokenSize)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	var session *models.Session
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		session, err = s.repomanager.Sessions(tx).FindOrCreate(ctx, &models.Session{
			UserID:       u.ID,
			RefreshToken: refresh,
			UserAgent:    in.UserAgent,
			IP:           in.IP,
			IsValid:      true,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	if !session.IsValid {
		return nil, common.Unauthenticated(MsgInvalidCredentials)
	}

	principal := models.NewPrincipal(u)
	tokens, err := s.issue(principal, session.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &Identity{User: principal, Tokens: tokens}, nil
}

// Logout drops the user's session. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.repomanager.Sessions(s.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// Authenticate resolves the caller from the cookie values. A valid access
// token is trusted without a store lookup. Otherwise the refresh token must
// match a stored valid session, and fresh tokens are returned.
func (s *AuthService) Authenticate(ctx context.Context, accessToken, refreshToken string) (*Identity, error) {
	if accessToken != "" {
		if p, err := s.codec.VerifyAccess(accessToken); err == nil {
			return &Identity{User: *p}, nil
		}
	}
	if refreshToken == "" {
		return nil, common.Unauthenticated(MsgAuthenticationInvalid)
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, common.Unauthenticated(MsgAuthenticationInvalid)
	}

	session, err := s.repomanager.Sessions(s.db).GetByUserAndToken(ctx, claims.User.UserID, claims.RefreshToken)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "error searching session", "user_id", claims.User.UserID, "error", err)
		}
		return nil, common.Unauthenticated(MsgAuthenticationInvalid)
	}
	if !session.IsValid {
		return nil, common.Unauthenticated(MsgAuthenticationInvalid)
	}

	tokens, err := s.issue(claims.User, session.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &Identity{User: claims.User, Tokens: tokens}, nil
}

// ForgotPassword emails a reset token when the user exists. The outcome is
// not reported to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return common.BadRequest(MsgProvideEmail)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}

	token, err := common.MakeRandHexString(common.ResetTokenSize)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}
	expires := s.now().Add(s.resetTTL)
	u.PasswordToken = common.HashToken(token)
	u.PasswordTokenExpiresAt = &expires
	if err := repo.Update(ctx, u); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, u.Email, u.Name, token); err != nil {
		s.logger.Error(ctx, "error sending reset email", "email", u.Email, "error", err)
	}
	return nil
}

// ResetPassword sets a new password if token matches the outstanding reset
// token and has not expired. All mismatches look the same to the caller.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if in.Email == "" || in.Token == "" || in.Password == "" {
		return common.BadRequest(MsgProvideAllValues)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.BadRequest(MsgInvalidResetToken)
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if u.PasswordToken == "" || u.PasswordTokenExpiresAt == nil ||
		!s.now().Before(*u.PasswordTokenExpiresAt) ||
		!equal(u.PasswordToken, common.HashToken(in.Token)) {
		return common.BadRequest(MsgInvalidResetToken)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.PasswordToken = ""
	u.PasswordTokenExpiresAt = nil
	if err := repo.Update(ctx, u); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

func (s *AuthService) issue(p models.Principal, refreshValue string) (*TokenPair, error) {
	access, err := s.codec.SignAccess(p)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.SignRefresh(p, refreshValue)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
