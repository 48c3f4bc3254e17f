package handler_test

import (
	"bytes"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/mkrylov/accountd/internal/handler"
	"github.com/mkrylov/accountd/internal/middleware"
	"github.com/mkrylov/accountd/internal/pkg/signer"
	"github.com/mkrylov/accountd/internal/service"
	"github.com/mkrylov/accountd/internal/testutil"
)

type env struct {
	router http.Handler
	sender *testutil.RecordingSender
	signer *signer.Signer
	users  *testutil.MemUserStore
	tokens *testutil.MemTokenStore
}

func setupRouter(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := testutil.NewMemUserStore()
	tokens := testutil.NewMemTokenStore()
	resets := testutil.NewMemResetStore()
	sender := testutil.NewRecordingSender()
	linkSigner := signer.New([]byte("test-app-key"))

	mailer := service.NewMailer(sender, linkSigner, "http://localhost", time.Hour, time.Hour)
	events := service.NewLogSink()
	tokenService := service.NewTokenService(tokens, users)
	authService := service.NewAuthService(users, tokenService, mailer, events)
	resetService := service.NewPasswordResetService(users, resets, mailer, events, time.Minute, time.Hour)

	deps := handler.RouterDeps{
		Auth:              handler.NewAuthHandler(authService, resetService),
		Profile:           handler.NewProfileHandler(),
		Signer:            linkSigner,
		Authenticator:     tokenService,
		ThrottlePerMinute: 6,
	}

	engine, err := webapi.NewEngine(
		"/api",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return &env{router: engine, sender: sender, signer: linkSigner, users: users, tokens: tokens}
}

func (e *env) do(t *testing.T, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

func (e *env) lastMailLink(t *testing.T) *url.URL {
	t.Helper()
	mail, ok := e.sender.Last()
	require.True(t, ok, "expected a mail")
	match := hrefRe.FindStringSubmatch(mail.Body)
	require.NotNil(t, match)
	link, err := url.Parse(html.UnescapeString(match[1]))
	require.NoError(t, err)
	return link
}

func (e *env) register(t *testing.T, name, email, pw string) {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/registration", map[string]string{
		"name": name, "email": email, "password": pw, "password_confirmation": pw,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func (e *env) verifyFromMail(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	link := e.lastMailLink(t)
	return e.do(t, http.MethodGet, link.Path+"?"+link.RawQuery, nil, nil)
}

func (e *env) login(t *testing.T, email, pw string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": pw,
	}, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	token, _ := decodeBody(t, resp)["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}
