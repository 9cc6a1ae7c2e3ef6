package auth_test

import (
	"testing"
	"time"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/testutils"
	"github.com/duduji/api/internal/token"

	"github.com/stretchr/testify/assert"
)

func TestSignIn(t *testing.T) {
	env := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, env.DB, "test@example.com", "password123", "tester")

	t.Run("Success - Valid credentials set cookies", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "test@example.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-in", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		access := testutils.ResponseCookie(resp, token.AccessCookie)
		refresh := testutils.ResponseCookie(resp, token.RefreshCookie)
		assert.NotNil(t, access)
		assert.NotNil(t, refresh)
		assert.NotEmpty(t, access.Value)
		assert.NotEmpty(t, refresh.Value)
		assert.True(t, access.HttpOnly)
	})

	t.Run("Success - Remember me extends access cookie", func(t *testing.T) {
		body := map[string]interface{}{
			"email":      "test@example.com",
			"password":   "password123",
			"rememberMe": true,
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-in", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		access := testutils.ResponseCookie(resp, token.AccessCookie)
		assert.NotNil(t, access)
		assert.Greater(t, access.MaxAge, int(time.Hour.Seconds()))
	})

	t.Run("Error - Wrong password", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "test@example.com",
			"password": "wrongpassword",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-in", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
		testutils.AssertError(t, resp, "UNAUTHORIZED")
	})

	t.Run("Error - Unknown email", func(t *testing.T) {
		body := map[string]interface{}{
			"email":    "nobody@example.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-in", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("Error - Withdrawn user", func(t *testing.T) {
		gone := testutils.CreateTestUser(t, env.DB, "gone@example.com", "password123", "gone")
		now := time.Now()
		env.DB.Model(&models.User{}).Where("id = ?", gone.ID).Updates(map[string]interface{}{
			"is_withdrawal": true,
			"withdrawal_at": now,
		})

		body := map[string]interface{}{
			"email":    "gone@example.com",
			"password": "password123",
		}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-in", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, "Withdrawal User", result.Error.Message)
	})

	t.Run("Error - Missing fields", func(t *testing.T) {
		body := map[string]interface{}{"email": "test@example.com"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-in", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, "BAD_REQUEST")
	})
}

func TestSignOut(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "POST", "/auth/sign-out", nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 204, resp.Code)

	access := testutils.ResponseCookie(resp, token.AccessCookie)
	assert.NotNil(t, access)
	assert.Empty(t, access.Value)
}

func TestRefresh(t *testing.T) {
	env := testutils.SetupTestApp(t)
	u := testutils.CreateTestUser(t, env.DB, "test@example.com", "password123", "tester")

	t.Run("Success - Valid refresh cookie", func(t *testing.T) {
		refreshToken, err := env.Tokens.IssueRefreshToken(u.ID)
		assert.NoError(t, err)

		// The refresh route reads the refresh cookie, not the access cookie.
		resp, err := testutils.MakeRequestWithCookie(env.App, "POST", "/auth/refresh", nil, token.RefreshCookie, refreshToken)
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		access := testutils.ResponseCookie(resp, token.AccessCookie)
		assert.NotNil(t, access)
		assert.NotEmpty(t, access.Value)
	})

	t.Run("Error - Missing cookie", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/refresh", nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("Error - Access token in refresh cookie", func(t *testing.T) {
		accessToken := env.AccessToken(t, u.ID)

		resp, err := testutils.MakeRequestWithCookie(env.App, "POST", "/auth/refresh", nil, token.RefreshCookie, accessToken)
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})

	t.Run("Error - Withdrawn user cannot refresh", func(t *testing.T) {
		gone := testutils.CreateTestUser(t, env.DB, "gone@example.com", "password123", "gone")
		env.DB.Model(&models.User{}).Where("id = ?", gone.ID).Update("is_withdrawal", true)

		refreshToken, err := env.Tokens.IssueRefreshToken(gone.ID)
		assert.NoError(t, err)

		resp, err := testutils.MakeRequestWithCookie(env.App, "POST", "/auth/refresh", nil, token.RefreshCookie, refreshToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})
}

func TestEmailVerification(t *testing.T) {
	env := testutils.SetupTestApp(t)

	t.Run("Success - Code issued and verified", func(t *testing.T) {
		body := map[string]interface{}{"email": "new@example.com"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verification-code-send", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)
		assert.Len(t, env.Mailer.Sent, 1)

		var auth models.EmailAuth
		err = env.DB.Where("email = ? AND auth_type = ?", "new@example.com", models.EmailAuthSignIn).First(&auth).Error
		assert.NoError(t, err)
		assert.Len(t, auth.Code, 6)
		assert.Contains(t, env.Mailer.Sent[0].Body, auth.Code)

		verify := map[string]interface{}{"email": "new@example.com", "code": auth.Code}
		resp, err = testutils.MakeRequest(env.App, "POST", "/auth/email-verify", verify, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		env.DB.First(&auth, auth.ID)
		assert.True(t, auth.Verified)
		assert.False(t, auth.Used)
	})

	t.Run("Error - Wrong code", func(t *testing.T) {
		verify := map[string]interface{}{"email": "new@example.com", "code": "000000"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verify", verify, "")
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Expired code", func(t *testing.T) {
		body := map[string]interface{}{"email": "slow@example.com"}
		_, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verification-code-send", body, "")
		assert.NoError(t, err)

		var auth models.EmailAuth
		env.DB.Where("email = ? AND auth_type = ?", "slow@example.com", models.EmailAuthSignIn).First(&auth)

		testutils.BackdateEmailAuth(t, env.DB, "slow@example.com", models.EmailAuthSignIn, 25*time.Hour)

		verify := map[string]interface{}{"email": "slow@example.com", "code": auth.Code}
		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verify", verify, "")
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, "Validity Time Expiration", result.Error.Message)
	})

	t.Run("Error - Delivery failure", func(t *testing.T) {
		env.Mailer.Fail = true
		defer func() { env.Mailer.Fail = false }()

		body := map[string]interface{}{"email": "unreachable@example.com"}
		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verification-code-send", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 500, resp.Code)
		testutils.AssertError(t, resp, "EMAIL_DELIVERY_FAILED")
	})

	t.Run("Reissue overwrites previous code", func(t *testing.T) {
		body := map[string]interface{}{"email": "again@example.com"}
		_, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verification-code-send", body, "")
		assert.NoError(t, err)

		var first models.EmailAuth
		env.DB.Where("email = ? AND auth_type = ?", "again@example.com", models.EmailAuthSignIn).First(&first)

		_, err = testutils.MakeRequest(env.App, "POST", "/auth/email-verification-code-send", body, "")
		assert.NoError(t, err)

		var count int64
		env.DB.Model(&models.EmailAuth{}).Where("email = ?", "again@example.com").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Verifying does not restart the validity window", func(t *testing.T) {
		body := map[string]interface{}{"email": "patient@example.com"}
		_, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verification-code-send", body, "")
		assert.NoError(t, err)

		var auth models.EmailAuth
		env.DB.Where("email = ? AND auth_type = ?", "patient@example.com", models.EmailAuthSignIn).First(&auth)

		testutils.BackdateEmailAuth(t, env.DB, "patient@example.com", models.EmailAuthSignIn, 2*time.Hour)

		verify := map[string]interface{}{"email": "patient@example.com", "code": auth.Code}
		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-verify", verify, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		// updated_at anchors the 24h window to issue time; redeeming must not
		// move it forward.
		env.DB.First(&auth, auth.ID)
		assert.True(t, auth.Verified)
		assert.Greater(t, time.Since(auth.UpdatedAt), time.Hour)
	})
}

func TestPasswordFind(t *testing.T) {
	env := testutils.SetupTestApp(t)
	testutils.CreateTestUser(t, env.DB, "test@example.com", "password123", "tester")

	t.Run("Success - Recovery code signs the user in", func(t *testing.T) {
		body := map[string]interface{}{"email": "test@example.com"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/password-find-email-send", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		var auth models.EmailAuth
		err = env.DB.Where("email = ? AND auth_type = ?", "test@example.com", models.EmailAuthPassword).First(&auth).Error
		assert.NoError(t, err)

		verify := map[string]interface{}{"email": "test@example.com", "code": auth.Code}
		resp, err = testutils.MakeRequest(env.App, "POST", "/auth/password-find-verify", verify, "")
		assert.NoError(t, err)
		assert.Equal(t, 204, resp.Code)

		access := testutils.ResponseCookie(resp, token.AccessCookie)
		assert.NotNil(t, access)
		assert.NotEmpty(t, access.Value)

		// Recovery codes are single-use.
		env.DB.First(&auth, auth.ID)
		assert.True(t, auth.Used)
	})

	t.Run("Error - Unknown account", func(t *testing.T) {
		body := map[string]interface{}{"email": "nobody@example.com"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/password-find-email-send", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}

func TestFindEmail(t *testing.T) {
	env := testutils.SetupTestApp(t)
	u := testutils.CreateTestUser(t, env.DB, "test@example.com", "password123", "tester")
	phone := "01012345678"
	env.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("phone", phone)

	t.Run("Success - Phone resolves to email", func(t *testing.T) {
		body := map[string]interface{}{"phone": phone}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-find", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, "test@example.com", data["email"])
	})

	t.Run("Error - Unknown phone", func(t *testing.T) {
		body := map[string]interface{}{"phone": "01099999999"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/auth/email-find", body, "")
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}
