package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/propchat/propchat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tcases := []struct {
		name          string
		authHeader    string
		cookie        *http.Cookie
		expectedToken string
		expectedOk    bool
	}{
		{
			name:          "authorization header",
			authHeader:    "Bearer some-token",
			expectedToken: "some-token",
			expectedOk:    true,
		},
		{
			name:       "malformed authorization header",
			authHeader: "Basic dXNlcjpwYXNz",
			expectedOk: false,
		},
		{
			name:          "session cookie",
			cookie:        &http.Cookie{Name: tokenCookieKey, Value: "cookie-token"},
			expectedToken: "cookie-token",
			expectedOk:    true,
		},
		{
			name:          "header takes precedence over cookie",
			authHeader:    "Bearer header-token",
			cookie:        &http.Cookie{Name: tokenCookieKey, Value: "cookie-token"},
			expectedToken: "header-token",
			expectedOk:    true,
		},
		{
			name:       "no credential",
			expectedOk: false,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}

			token, ok := bearerToken(req)
			assert.Equal(t, tc.expectedOk, ok, "expected ok for case: %s", tc.name)
			assert.Equal(t, tc.expectedToken, token, "expected token for case: %s", tc.name)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	app, _, _ := newTestApp(t)

	token, err := app.createJwtForSession(types.User{Id: 42}, time.Hour)
	assert.NoError(t, err, "expected no error creating token")

	var gotUserId int
	var gotOk bool
	handler := app.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		gotUserId, gotOk = UserId(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tcases := []struct {
		name           string
		setCredential  func(r *http.Request)
		expectedStatus int
		expectedUserId int
	}{
		{
			name: "bearer header",
			setCredential: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusOK,
			expectedUserId: 42,
		},
		{
			name: "session cookie",
			setCredential: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: token})
			},
			expectedStatus: http.StatusOK,
			expectedUserId: 42,
		},
		{
			name:           "no credential",
			setCredential:  func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "invalid token",
			setCredential: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-token")
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			gotUserId, gotOk = 0, false

			req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
			tc.setCredential(req)

			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "expected status for case: %s", tc.name)
			if tc.expectedStatus == http.StatusOK {
				assert.True(t, gotOk, "expected user id in context")
				assert.Equal(t, tc.expectedUserId, gotUserId, "expected the token's account id")
				assert.NotEmpty(t, rr.Header().Get("Cache-Control"), "expected cache control header on authenticated responses")
			} else {
				assert.False(t, gotOk, "expected handler not to run for case: %s", tc.name)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app, _, _ := newTestApp(t)

	handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something broke")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected internal server error after panic")
	assert.Equal(t, "close", rr.Header().Get("Connection"), "expected connection close header")
	assert.Contains(t, rr.Body.String(), "internal server error", "expected the generic error body")
}

func TestErrorHandler_passthrough(t *testing.T) {
	app, _, _ := newTestApp(t)

	handler := app.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/conversations", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code, "expected the handler's status to pass through")
}

func TestUserIdContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := UserId(req.Context())
	assert.False(t, ok, "expected no user id on a fresh context")

	ctx := WithUserId(req.Context(), 7)
	userId, ok := UserId(ctx)
	assert.True(t, ok, "expected user id after stamping the context")
	assert.Equal(t, 7, userId, "expected the stamped user id")
}
