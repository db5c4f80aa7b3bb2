package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resetTTL = 15 * time.Minute

// registerVerified creates and verifies a user through the service.
func (f *authFixture) registerVerified(t *testing.T, email, password string) *models.User {
	t.Helper()
	ctx := context.Background()
	u, err := f.svc.Register(ctx, RegisterInput{Name: "Rami", Email: email, Password: password})
	require.NoError(t, err)
	require.NoError(t, f.svc.VerifyEmail(ctx, email, f.notifier.last().token))
	return u
}

func (f *authFixture) login(t *testing.T, email, password string) (*Identity, error) {
	t.Helper()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	return f.svc.Login(context.Background(), LoginInput{Email: email, Password: password, UserAgent: "ua", IP: "1.2.3.4"})
}

func TestRegister_CreatesUnverifiedCustomerAndSendsMail(t *testing.T) {
	f := newAuthFixture(t)

	u, err := f.svc.Register(context.Background(), RegisterInput{Name: "Rami", Email: "r@x.io", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.False(t, u.IsVerified)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, auth.ComparePassword(u.PasswordHash, "secret1"))
	assert.Len(t, u.VerificationToken, 2*common.VerificationTokenSize)

	mail := f.notifier.last()
	assert.Equal(t, "verify", mail.kind)
	assert.Equal(t, "r@x.io", mail.to)
	assert.Equal(t, u.VerificationToken, mail.token)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Rami", Email: "r@x.io", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "Other", Email: "r@x.io", Password: "secret2"})
	assert.ErrorIs(t, err, common.ErrorBadRequest)
	assert.Equal(t, MsgEmailTaken, messageOf(err))
}

func TestRegister_MailFailureIsNotFatal(t *testing.T) {
	f := newAuthFixture(t)
	f.notifier.err = errors.New("smtp down")

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Rami", Email: "r@x.io", Password: "secret1"})
	assert.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Rami", Email: "r@x.io", Password: "secret1"})
	require.NoError(t, err)
	token := f.notifier.last().token

	err = f.svc.VerifyEmail(ctx, "r@x.io", "wrong")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, MsgVerificationFailed, messageOf(err))

	require.NoError(t, f.svc.VerifyEmail(ctx, "r@x.io", token))

	u, err := f.rm.UsersRepo.GetByEmail(ctx, "r@x.io")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.NotNil(t, u.VerifiedAt)
	assert.Empty(t, u.VerificationToken)

	// replay
	err = f.svc.VerifyEmail(ctx, "r@x.io", token)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	err = f.svc.VerifyEmail(ctx, "nobody@x.io", token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLogin_Failures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginInput{Email: "nobody@x.io", Password: "x"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, MsgInvalidEmailPassword, messageOf(err))

	_, err = f.svc.Register(ctx, RegisterInput{Name: "Rami", Email: "r@x.io", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginInput{Email: "r@x.io", Password: "bad"})
	assert.Equal(t, MsgInvalidEmailPassword, messageOf(err))

	_, err = f.svc.Login(ctx, LoginInput{Email: "r@x.io", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, MsgNotVerified, messageOf(err))
}

func TestLogin_ReusesSessionRefreshValue(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerVerified(t, "r@x.io", "secret1")

	first, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)
	second, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)

	c1, err := f.codec.VerifyRefresh(first.Tokens.RefreshToken)
	require.NoError(t, err)
	c2, err := f.codec.VerifyRefresh(second.Tokens.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, c1.RefreshToken, c2.RefreshToken)
	assert.Len(t, c1.RefreshToken, 2*common.RefreshTokenSize)
	assert.Equal(t, 1, f.rm.SessionsRepo.Count())
	assert.Equal(t, models.Principal{Name: "Rami", UserID: u.ID, Role: models.RoleCustomer}, first.User)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin_RevokedSession(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerVerified(t, "r@x.io", "secret1")

	_, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.rm.SessionsRepo.Invalidate(context.Background(), u.ID))

	_, err = f.login(t, "r@x.io", "secret1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, MsgInvalidCredentials, messageOf(err))
}

func TestAuthenticate_AccessToken(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "r@x.io", "secret1")
	id, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)

	got, err := f.svc.Authenticate(context.Background(), id.Tokens.AccessToken, "")
	require.NoError(t, err)
	assert.Equal(t, id.User, got.User)
	assert.Nil(t, got.Tokens)
}

func TestAuthenticate_RefreshFallbackReissues(t *testing.T) {
	f := newAuthFixture(t)
	f.registerVerified(t, "r@x.io", "secret1")
	id, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)

	got, err := f.svc.Authenticate(context.Background(), "garbage", id.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, got.Tokens)
	assert.Equal(t, id.User, got.User)

	c, err := f.codec.VerifyRefresh(got.Tokens.RefreshToken)
	require.NoError(t, err)
	orig, _ := f.codec.VerifyRefresh(id.Tokens.RefreshToken)
	assert.Equal(t, orig.RefreshToken, c.RefreshToken)
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerVerified(t, "r@x.io", "secret1")
	id, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)
	ctx := context.Background()

	cases := map[string][2]string{
		"no credentials":         {"", ""},
		"refresh used as access": {id.Tokens.RefreshToken, ""},
		"access used as refresh": {"", id.Tokens.AccessToken},
		"forged refresh":         {"", "a.b.c"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Authenticate(ctx, tc[0], tc[1])
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
			assert.Equal(t, MsgAuthenticationInvalid, messageOf(err))
		})
	}

	// unknown refresh value for a real user
	stale, err := f.codec.SignRefresh(id.User, "deadbeef")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, "", stale)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	// revoked session
	require.NoError(t, f.rm.SessionsRepo.Invalidate(ctx, u.ID))
	_, err = f.svc.Authenticate(ctx, "", id.Tokens.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogout_StaleRefreshRejected(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerVerified(t, "r@x.io", "secret1")
	id, err := f.login(t, "r@x.io", "secret1")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, f.svc.Logout(ctx, u.ID))
	require.NoError(t, f.svc.Logout(ctx, u.ID))
	assert.Equal(t, 0, f.rm.SessionsRepo.Count())

	_, err = f.svc.Authenticate(ctx, "", id.Tokens.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestForgotPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	err := f.svc.ForgotPassword(ctx, "")
	assert.ErrorIs(t, err, common.ErrorBadRequest)

	sentBefore := len(f.notifier.sent)
	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@x.io"))
	assert.Len(t, f.notifier.sent, sentBefore)

	f.registerVerified(t, "r@x.io", "secret1")
	require.NoError(t, f.svc.ForgotPassword(ctx, "r@x.io"))

	mail := f.notifier.last()
	assert.Equal(t, "reset", mail.kind)
	assert.Len(t, mail.token, 2*common.ResetTokenSize)

	u, err := f.rm.UsersRepo.GetByEmail(ctx, "r@x.io")
	require.NoError(t, err)
	assert.Equal(t, common.HashToken(mail.token), u.PasswordToken)
	assert.NotEqual(t, mail.token, u.PasswordToken)
	require.NotNil(t, u.PasswordTokenExpiresAt)
	assert.Equal(t, now.Add(resetTTL), *u.PasswordTokenExpiresAt)
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.registerVerified(t, "r@x.io", "secret1")
	require.NoError(t, f.svc.ForgotPassword(ctx, "r@x.io"))
	token := f.notifier.last().token

	err := f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "r@x.io"})
	assert.Equal(t, MsgProvideAllValues, messageOf(err))

	failures := []ResetPasswordInput{
		{Email: "nobody@x.io", Token: token, Password: "newpass"},
		{Email: "r@x.io", Token: "wrong", Password: "newpass"},
	}
	for _, in := range failures {
		err := f.svc.ResetPassword(ctx, in)
		assert.ErrorIs(t, err, common.ErrorBadRequest)
		assert.Equal(t, MsgInvalidResetToken, messageOf(err))
	}

	// expired
	f.svc.now = func() time.Time { return now.Add(resetTTL) }
	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "r@x.io", Token: token, Password: "newpass"})
	assert.Equal(t, MsgInvalidResetToken, messageOf(err))

	f.svc.now = func() time.Time { return now.Add(time.Minute) }
	require.NoError(t, f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "r@x.io", Token: token, Password: "newpass"}))

	u, err := f.rm.UsersRepo.GetByEmail(ctx, "r@x.io")
	require.NoError(t, err)
	assert.True(t, auth.ComparePassword(u.PasswordHash, "newpass"))
	assert.Empty(t, u.PasswordToken)
	assert.Nil(t, u.PasswordTokenExpiresAt)

	// single use
	err = f.svc.ResetPassword(ctx, ResetPasswordInput{Email: "r@x.io", Token: token, Password: "again1"})
	assert.Equal(t, MsgInvalidResetToken, messageOf(err))
}
