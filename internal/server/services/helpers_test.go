package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/logging"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/repositories/repotest"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type sentMail struct {
	kind, to, name, token string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) SendVerification(_ context.Context, to, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{"verify", to, name, token})
	return n.err
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{"reset", to, name, token})
	return n.err
}

func (n *fakeNotifier) last() sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentMail{}
	}
	return n.sent[len(n.sent)-1]
}

type authFixture struct {
	svc      *AuthService
	rm       *repotest.Manager
	mock     sqlmock.Sqlmock
	notifier *fakeNotifier
	codec    *auth.Codec
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := repotest.NewManager()
	n := &fakeNotifier{}
	codec := auth.NewCodec("test-secret")
	return &authFixture{
		svc:      NewAuthService(db, rm, codec, n, logging.Nop{}, resetTTL),
		rm:       rm,
		mock:     mock,
		notifier: n,
		codec:    codec,
	}
}

func messageOf(err error) string {
	var e *common.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
