package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	apperrors "github.com/target/event-planner/internal/errors"
	"github.com/target/event-planner/internal/ports"
	"go.uber.org/mock/gomock"
)

func newMFAFixture(t *testing.T) (authFixture, *MFAService) {
	t.Helper()
	f := newAuthFixture(t)
	svc, err := NewMFAService(MFAServiceOptions{Provider: f.provider, Auth: f.svc, Issuer: "Planner"})
	require.NoError(t, err)
	return f, svc
}

func loggedInSession(methods ...domainauth.TwoFactorMethod) *domainauth.Session {
	user := &domainauth.User{ID: "u1", Username: "jane"}
	if methods != nil {
		user.TwoFactor = &domainauth.TwoFactor{Methods: methods}
	}
	return &domainauth.Session{ID: "s1", User: user}
}

func TestNewMFAService(t *testing.T) {
	f := newAuthFixture(t)

	_, err := NewMFAService(MFAServiceOptions{Auth: f.svc})
	require.Error(t, err)
	_, err = NewMFAService(MFAServiceOptions{Provider: f.provider})
	require.Error(t, err)

	svc, err := NewMFAService(MFAServiceOptions{Provider: f.provider, Auth: f.svc, Issuer: "  "})
	require.NoError(t, err)
	assert.Equal(t, defaultMFAIssuer, svc.issuer)
}

func TestMFAService_Setup(t *testing.T) {
	f, svc := newMFAFixture(t)
	ctx := context.Background()
	sess := loggedInSession()

	f.provider.EXPECT().GenerateSecret(ctx).Return(ports.TwoFactorSecret{Secret: "raw", SecretBase32Encoded: "JBSWY3DPEHPK3PXP"}, nil)

	res, err := svc.Setup(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", res.Secret)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", sess.TwoFactorSecret)

	require.True(t, strings.HasPrefix(res.QRCodeURL, "otpauth://totp/Planner:jane?"), res.QRCodeURL)
	u, err := url.Parse(res.QRCodeURL)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", u.Query().Get("secret"))
	assert.Equal(t, "Planner", u.Query().Get("issuer"))

	stored, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", stored.TwoFactorSecret)
}

func TestMFAService_Setup_Errors(t *testing.T) {
	f, svc := newMFAFixture(t)
	ctx := context.Background()

	_, err := svc.Setup(ctx, &domainauth.Session{ID: "anon"})
	assert.True(t, apperrors.IsUnauthorized(err))

	f.provider.EXPECT().GenerateSecret(ctx).Return(ports.TwoFactorSecret{}, errors.New("401"))
	sess := loggedInSession()
	_, err = svc.Setup(ctx, sess)
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Equal(t, "Failed to generate secret.", apperrors.PublicMessage(err, ""))
	assert.Empty(t, sess.TwoFactorSecret)
}

func TestMFAService_Verify_Success(t *testing.T) {
	f, svc := newMFAFixture(t)
	ctx := context.Background()
	sess := loggedInSession()
	sess.TwoFactorSecret = "JBSWY3DP"

	f.provider.EXPECT().
		EnableTwoFactor(ctx, ports.EnableTwoFactorInput{UserID: "u1", Code: "123456", Secret: "JBSWY3DP"}).
		Return(nil)
	// The enable call enrolls the method; patching it in again would duplicate it.
	f.provider.EXPECT().PatchUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	require.NoError(t, svc.Verify(ctx, sess, " 123456 "))
	assert.Empty(t, sess.TwoFactorSecret)
	require.True(t, sess.User.TwoFactorEnabled())
	assert.Equal(t, []domainauth.TwoFactorMethod{{Method: domainauth.TwoFactorMethodAuthenticator}}, sess.User.TwoFactor.Methods)
}

func TestMFAService_Verify_RejectsBeforeRemoteCall(t *testing.T) {
	f, svc := newMFAFixture(t)
	ctx := context.Background()
	f.provider.EXPECT().EnableTwoFactor(gomock.Any(), gomock.Any()).Times(0)
	f.provider.EXPECT().PatchUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	sess := loggedInSession()
	sess.TwoFactorSecret = "JBSWY3DP"
	err := svc.Verify(ctx, sess, "   ")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "totpCode", apperrors.GetField(err))

	err = svc.Verify(ctx, loggedInSession(), "123456")
	assert.True(t, apperrors.IsValidation(err))

	err = svc.Verify(ctx, &domainauth.Session{ID: "anon"}, "123456")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestMFAService_Verify_CodeRejected(t *testing.T) {
	f, svc := newMFAFixture(t)
	ctx := context.Background()
	sess := loggedInSession()
	sess.TwoFactorSecret = "JBSWY3DP"

	f.provider.EXPECT().EnableTwoFactor(ctx, gomock.Any()).Return(errors.New("421"))
	f.provider.EXPECT().PatchUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := svc.Verify(ctx, sess, "000000")
	require.Error(t, err)
	assert.True(t, apperrors.IsUpstream(err))
	assert.Equal(t, "JBSWY3DP", sess.TwoFactorSecret)
	assert.False(t, sess.User.TwoFactorEnabled())
}

func TestMFAService_Disable(t *testing.T) {
	f, svc := newMFAFixture(t)
	ctx := context.Background()
	sess := loggedInSession(domainauth.TwoFactorMethod{Method: domainauth.TwoFactorMethodAuthenticator})

	f.provider.EXPECT().RetrieveUser(ctx, "u1").Return(domainauth.User{
		ID: "u1",
		TwoFactor: &domainauth.TwoFactor{Methods: []domainauth.TwoFactorMethod{
			{ID: "m1", Method: "authenticator"},
			{ID: "m2", Method: "email"},
		}},
	}, nil)
	f.provider.EXPECT().DisableTwoFactor(ctx, ports.DisableTwoFactorInput{UserID: "u1", MethodID: "m1", Code: "654321"}).Return(nil)
	f.provider.EXPECT().DisableTwoFactor(ctx, ports.DisableTwoFactorInput{UserID: "u1", MethodID: "m2", Code: "654321"}).Return(nil)

	require.NoError(t, svc.Disable(ctx, sess, "654321"))
	assert.False(t, sess.User.TwoFactorEnabled())

	stored, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, stored.User.TwoFactorEnabled())
}

func TestMFAService_Disable_WithoutCodeMakesNoRemoteCall(t *testing.T) {
	f, svc := newMFAFixture(t)
	f.provider.EXPECT().RetrieveUser(gomock.Any(), gomock.Any()).Times(0)
	f.provider.EXPECT().DisableTwoFactor(gomock.Any(), gomock.Any()).Times(0)

	sess := loggedInSession(domainauth.TwoFactorMethod{ID: "m1", Method: "authenticator"})
	err := svc.Disable(context.Background(), sess, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "totpCode", apperrors.GetField(err))
	assert.Equal(t, "TOTP code is required", apperrors.PublicMessage(err, ""))
	assert.True(t, sess.User.TwoFactorEnabled())
}

func TestMFAService_Disable_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		_, svc := newMFAFixture(t)
		err := svc.Disable(ctx, &domainauth.Session{ID: "anon"}, "123456")
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("no methods", func(t *testing.T) {
		f, svc := newMFAFixture(t)
		f.provider.EXPECT().RetrieveUser(ctx, "u1").Return(domainauth.User{ID: "u1"}, nil)
		f.provider.EXPECT().DisableTwoFactor(gomock.Any(), gomock.Any()).Times(0)

		err := svc.Disable(ctx, loggedInSession(), "123456")
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, "No two-factor methods enabled.", apperrors.PublicMessage(err, ""))
	})

	t.Run("retrieve fails", func(t *testing.T) {
		f, svc := newMFAFixture(t)
		f.provider.EXPECT().RetrieveUser(ctx, "u1").Return(domainauth.User{}, errors.New("timeout"))

		err := svc.Disable(ctx, loggedInSession(), "123456")
		assert.True(t, apperrors.IsUpstream(err))
		assert.Equal(t, "Error disabling MFA", apperrors.PublicMessage(err, ""))
	})

	t.Run("provider rejects code", func(t *testing.T) {
		f, svc := newMFAFixture(t)
		f.provider.EXPECT().RetrieveUser(ctx, "u1").Return(domainauth.User{
			ID:        "u1",
			TwoFactor: &domainauth.TwoFactor{Methods: []domainauth.TwoFactorMethod{{ID: "m1", Method: "authenticator"}}},
		}, nil)
		f.provider.EXPECT().DisableTwoFactor(ctx, gomock.Any()).Return(errors.New("421"))

		sess := loggedInSession(domainauth.TwoFactorMethod{Method: "authenticator"})
		err := svc.Disable(ctx, sess, "000000")
		assert.True(t, apperrors.IsUpstream(err))
		assert.True(t, sess.User.TwoFactorEnabled())
	})
}
