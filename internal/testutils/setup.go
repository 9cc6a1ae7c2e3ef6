package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duduji/api/internal/auth"
	"github.com/duduji/api/internal/comment"
	"github.com/duduji/api/internal/dazim"
	"github.com/duduji/api/internal/email"
	"github.com/duduji/api/internal/feed"
	"github.com/duduji/api/internal/group"
	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/server"
	"github.com/duduji/api/internal/token"
	"github.com/duduji/api/internal/user"
	"github.com/duduji/api/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

const (
	TestAccessSecret  = "test-access-secret-0123456789abcdef"
	TestRefreshSecret = "test-refresh-secret-0123456789abcdef"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.SocialAccount{},
		&models.EmailAuth{},
		&models.Group{},
		&models.GroupUser{},
		&models.Dazim{},
		&models.DazimReaction{},
		&models.DazimComment{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// FakeUploader stands in for S3: it records uploads and hands back a
// deterministic URL.
type FakeUploader struct {
	Uploads []string
}

func (u *FakeUploader) Upload(file *multipart.FileHeader, keyPrefix string) (string, error) {
	key := keyPrefix + "/" + file.Filename
	u.Uploads = append(u.Uploads, key)
	return "https://cdn.test/" + key, nil
}

// FakeMailer captures outgoing mail instead of talking SMTP.
type FakeMailer struct {
	Sent []SentMail
	Fail bool
}

type SentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *FakeMailer) Send(to, subject, body string) error {
	if m.Fail {
		return fmt.Errorf("smtp: connection refused")
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

type TestEnv struct {
	App      *fiber.App
	DB       *gorm.DB
	Tokens   *token.Issuer
	Uploader *FakeUploader
	Mailer   *FakeMailer
	Emails   *email.Service
}

func SetupTestApp(t *testing.T) *TestEnv {
	return setupTestApp(t, false)
}

// SetupTestAppWithVerification gates sign-up on a verified email code, the
// production default.
func SetupTestAppWithVerification(t *testing.T) *TestEnv {
	return setupTestApp(t, true)
}

func setupTestApp(t *testing.T, requireEmailVerification bool) *TestEnv {
	db := TestDB(t)

	tokens := token.NewIssuer(TestAccessSecret, TestRefreshSecret, "test")
	uploader := &FakeUploader{}
	mailer := &FakeMailer{}

	log := logrus.New()
	log.SetOutput(io.Discard)

	emails := email.NewService(db, mailer, "http://client.test", log)

	authSvc := auth.NewService(db, tokens)
	userSvc := user.NewService(db, emails, requireEmailVerification)
	groupSvc := group.NewService(db)
	dazimSvc := dazim.NewService(db)
	feedSvc := feed.NewService(db)
	commentSvc := comment.NewService(db)

	app := server.New(server.Deps{
		DB:        db,
		Tokens:    tokens,
		ClientURL: "http://client.test",

		Auth:    auth.NewHandler(authSvc, emails, "http://client.test"),
		User:    user.NewHandler(userSvc, uploader),
		Group:   group.NewHandler(groupSvc, uploader),
		Dazim:   dazim.NewHandler(dazimSvc, uploader),
		Feed:    feed.NewHandler(feedSvc),
		Comment: comment.NewHandler(commentSvc),
	})

	return &TestEnv{
		App:      app,
		DB:       db,
		Tokens:   tokens,
		Uploader: uploader,
		Mailer:   mailer,
		Emails:   emails,
	}
}

func CreateTestUser(t *testing.T, db *gorm.DB, email, password, nickName string) *models.User {
	hashed, err := utils.HashPassword(password)
	assert.NoError(t, err, "Failed to hash password")

	u := &models.User{
		Email:    email,
		Password: hashed,
		Name:     nickName,
	}
	err = db.Create(u).Error
	assert.NoError(t, err, "Failed to create test user")

	profile := &models.UserProfile{
		UserID:   u.ID,
		NickName: nickName,
	}
	err = db.Create(profile).Error
	assert.NoError(t, err, "Failed to create test profile")

	u.Profile = profile
	return u
}

// AccessToken mints a valid access token for the given user.
func (env *TestEnv) AccessToken(t *testing.T, userID string) string {
	tok, err := env.Tokens.IssueAccessToken(userID)
	assert.NoError(t, err, "Failed to issue test token")
	return tok
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, accessToken string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: token.AccessCookie, Value: accessToken})
	}

	return doRequest(app, req)
}

// MakeRequestWithCookie sends the request with an arbitrary named cookie,
// used for the refresh route which reads the refresh cookie.
func MakeRequestWithCookie(app *fiber.App, method, url string, body interface{}, cookieName, cookieValue string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: cookieValue})

	return doRequest(app, req)
}

func MakeMultipartRequest(app *fiber.App, method, url string, fields map[string]string, files map[string]string, accessToken string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			return nil, err
		}
		part.Write([]byte("fake image bytes"))
	}
	writer.Close()

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: token.AccessCookie, Value: accessToken})
	}

	return doRequest(app, req)
}

func doRequest(app *fiber.App, req *http.Request) (*httptest.ResponseRecorder, error) {
	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode
	for key, values := range resp.Header {
		for _, v := range values {
			rec.Header().Add(key, v)
		}
	}

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

// ResponseCookie digs a named cookie out of the recorded Set-Cookie headers.
func ResponseCookie(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	parsed := http.Response{Header: resp.Header()}
	for _, c := range parsed.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	if result.Error != nil {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
}

// BackdateEmailAuth shifts a code's issue time, used to exercise expiry.
func BackdateEmailAuth(t *testing.T, db *gorm.DB, emailAddr string, authType models.EmailAuthType, age time.Duration) {
	err := db.Model(&models.EmailAuth{}).
		Where("email = ? AND auth_type = ?", emailAddr, authType).
		UpdateColumn("updated_at", time.Now().Add(-age)).Error
	assert.NoError(t, err, "Failed to backdate email auth")
}
