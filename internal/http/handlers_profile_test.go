package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/event-planner/internal/domain/auth"
	"github.com/target/event-planner/internal/mocks"
	"github.com/target/event-planner/internal/ports"
	"go.uber.org/mock/gomock"
)

func newMockApp(t *testing.T, opts testAppOptions) (*testApp, *mocks.MockIdentityProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	idp := mocks.NewMockIdentityProvider(ctrl)
	opts.provider = idp
	return newTestApp(t, opts), idp
}

func TestProfileShow(t *testing.T) {
	app, idp := newMockApp(t, testAppOptions{})
	id := app.login(t, "admin")

	t.Run("anonymous is sent home", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/profile", "", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("fresh user", func(t *testing.T) {
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(domainauth.User{
			ID:        "u1",
			Email:     "jane@example.com",
			Data:      map[string]any{"nickname": "JJ"},
			TwoFactor: &domainauth.TwoFactor{Methods: []domainauth.TwoFactorMethod{{ID: "m1", Method: "authenticator"}}},
		}, nil)

		rec := app.do(http.MethodGet, "/profile?success=true", id, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Title   string          `json:"title"`
			User    domainauth.User `json:"user"`
			Enabled bool            `json:"is2FAEnabled"`
			Success bool            `json:"success"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Profile", body.Title)
		assert.Equal(t, "JJ", body.User.Data["nickname"])
		assert.True(t, body.Enabled)
		assert.True(t, body.Success)
	})

	t.Run("provider failure", func(t *testing.T) {
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(domainauth.User{}, errors.New("boom"))

		rec := app.do(http.MethodGet, "/profile", id, nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/?error=true", rec.Header().Get("Location"))
	})
}

func TestProfileUpdate(t *testing.T) {
	app, idp := newMockApp(t, testAppOptions{})
	id := app.login(t, "admin")

	idp.EXPECT().PatchUser(gomock.Any(), "u1", ports.UserPatch{Data: map[string]any{
		"nickname": "JJ", "favoriteEvent": "Picnic", "hobby": nil,
	}}).Return(nil)

	form := url.Values{"nickname": {"JJ"}, "favoriteEvent": {" Picnic "}, "hobby": {""}}
	rec := app.do(http.MethodPost, "/profile/update", id, form)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile?success=true", rec.Header().Get("Location"))

	sess, err := app.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Picnic", sess.User.Data["favoriteEvent"])
	assert.Equal(t, "Picnic", sess.CustomData["favoriteEvent"])

	idp.EXPECT().PatchUser(gomock.Any(), "u1", gomock.Any()).Return(errors.New("down"))
	rec = app.do(http.MethodPost, "/profile/update", id, form)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
}

func TestMFASetup(t *testing.T) {
	app, idp := newMockApp(t, testAppOptions{})
	id := app.login(t, "admin")

	t.Run("anonymous gets 401", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/profile/mfa-setup", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "not_authorized", decodeError(t, rec))
	})

	for _, path := range []string{"/profile/mfa-setup", "/profile/mfa-enable"} {
		t.Run(path, func(t *testing.T) {
			idp.EXPECT().GenerateSecret(gomock.Any()).Return(ports.TwoFactorSecret{
				Secret: "raw", SecretBase32Encoded: "JBSWY3DPEHPK3PXP",
			}, nil)

			rec := app.do(http.MethodPost, path, id, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "JBSWY3DPEHPK3PXP", body["secret"])
			assert.True(t, strings.HasPrefix(body["qrCodeUrl"], "otpauth://totp/EventPlanner:jane?"), body["qrCodeUrl"])

			sess, err := app.sessions.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, "JBSWY3DPEHPK3PXP", sess.TwoFactorSecret)
		})
	}

	t.Run("provider failure", func(t *testing.T) {
		idp.EXPECT().GenerateSecret(gomock.Any()).Return(ports.TwoFactorSecret{}, errors.New("down"))

		rec := app.do(http.MethodPost, "/profile/mfa-setup", id, nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate secret.", decodeError(t, rec))
	})
}

func TestMFAVerify(t *testing.T) {
	app, idp := newMockApp(t, testAppOptions{})
	id := app.login(t, "admin")
	sess, err := app.sessions.Get(context.Background(), id)
	require.NoError(t, err)
	sess.TwoFactorSecret = "JBSWY3DPEHPK3PXP"
	require.NoError(t, app.sessions.Save(context.Background(), sess))

	t.Run("rejected code", func(t *testing.T) {
		idp.EXPECT().EnableTwoFactor(gomock.Any(), ports.EnableTwoFactorInput{
			UserID: "u1", Code: "000000", Secret: "JBSWY3DPEHPK3PXP",
		}).Return(errors.New("invalid"))

		rec := app.do(http.MethodPost, "/profile/mfa-verify", id, url.Values{"totpCode": {"000000"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile?error=true", rec.Header().Get("Location"))
	})

	t.Run("missing code", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/profile/mfa-verify", id, url.Values{})
		assert.Equal(t, "/profile?error=true", rec.Header().Get("Location"))
	})

	t.Run("accepted code", func(t *testing.T) {
		idp.EXPECT().EnableTwoFactor(gomock.Any(), gomock.Any()).Return(nil)
		idp.EXPECT().PatchUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rec := app.do(http.MethodPost, "/profile/mfa-verify", id, url.Values{"totpCode": {"123456"}})
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/profile?success=true", rec.Header().Get("Location"))

		got, err := app.sessions.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, got.TwoFactorSecret)
		assert.True(t, got.User.TwoFactorEnabled())
	})
}

func TestMFADisable(t *testing.T) {
	enrolled := domainauth.User{
		ID:        "u1",
		TwoFactor: &domainauth.TwoFactor{Methods: []domainauth.TwoFactorMethod{{ID: "m1", Method: "authenticator"}}},
	}

	t.Run("without code makes no remote call", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), gomock.Any()).Times(0)
		idp.EXPECT().DisableTwoFactor(gomock.Any(), gomock.Any()).Times(0)

		rec := app.do(http.MethodPost, "/profile/mfa-toggle", id, url.Values{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "TOTP code is required", decodeError(t, rec))
	})

	t.Run("anonymous gets 401", func(t *testing.T) {
		app, _ := newMockApp(t, testAppOptions{})
		rec := app.do(http.MethodDelete, "/profile/mfa-toggle?code=123456", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("no methods enrolled", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(domainauth.User{ID: "u1"}, nil)

		rec := app.do(http.MethodPost, "/profile/mfa-toggle", id, url.Values{"code": {"123456"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No two-factor methods enabled.", decodeError(t, rec))
	})

	t.Run("provider rejects code", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(enrolled, nil)
		idp.EXPECT().DisableTwoFactor(gomock.Any(), gomock.Any()).Return(errors.New("421"))

		rec := app.do(http.MethodPost, "/profile/mfa-toggle", id, url.Values{"code": {"123456"}})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Error disabling MFA", decodeError(t, rec))
	})

	t.Run("form totpCode", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(enrolled, nil)
		idp.EXPECT().DisableTwoFactor(gomock.Any(), ports.DisableTwoFactorInput{
			UserID: "u1", MethodID: "m1", Code: "123456",
		}).Return(nil)

		rec := app.do(http.MethodPost, "/profile/mfa-toggle", id, url.Values{"totpCode": {"123456"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"MFA disabled successfully"}`, rec.Body.String())
	})

	t.Run("totpCode wins over code", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(enrolled, nil)
		idp.EXPECT().DisableTwoFactor(gomock.Any(), ports.DisableTwoFactorInput{
			UserID: "u1", MethodID: "m1", Code: "222222",
		}).Return(nil)

		rec := app.do(http.MethodPost, "/profile/mfa-toggle", id, url.Values{"totpCode": {"222222"}, "code": {"999999"}})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("DELETE with query code", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(enrolled, nil)
		idp.EXPECT().DisableTwoFactor(gomock.Any(), ports.DisableTwoFactorInput{
			UserID: "u1", MethodID: "m1", Code: "654321",
		}).Return(nil)

		rec := app.do(http.MethodDelete, "/profile/mfa-toggle?code=654321", id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"MFA disabled successfully"}`, rec.Body.String())
	})

	t.Run("JSON body", func(t *testing.T) {
		app, idp := newMockApp(t, testAppOptions{})
		id := app.login(t, "admin")
		idp.EXPECT().RetrieveUser(gomock.Any(), "u1").Return(enrolled, nil)
		idp.EXPECT().DisableTwoFactor(gomock.Any(), gomock.Any()).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/profile/mfa-toggle", strings.NewReader(`{"totpCode":"111111"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		sess, err := app.sessions.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, sess.User.TwoFactor)
	})
}

func TestMFARoutesRateLimited(t *testing.T) {
	app, idp := newMockApp(t, testAppOptions{limit: 2})
	id := app.login(t, "admin")
	idp.EXPECT().GenerateSecret(gomock.Any()).Return(ports.TwoFactorSecret{SecretBase32Encoded: "JBSWY3DPEHPK3PXP"}, nil).Times(2)

	for range 2 {
		rec := app.do(http.MethodPost, "/profile/mfa-setup", id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := app.do(http.MethodPost, "/profile/mfa-setup", id, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
