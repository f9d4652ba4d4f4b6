package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raymond0208/CashCatalyst/src/config"
	"github.com/raymond0208/CashCatalyst/src/logger"
)

func setupCSRFConfig(t *testing.T) {
	t.Helper()
	logger.InitLogger("error")
	if config.Cfg == nil {
		config.Cfg = &config.AppConfig{}
	}
	config.Cfg.CSRFAuthKey = []byte("0123456789abcdef0123456789abcdef")
}

func issueCSRFToken(t *testing.T) (token string, cookie *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	GetCSRFToken(w, httptest.NewRequest(http.MethodGet, "/api/auth/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	token = w.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	for _, c := range w.Result().Cookies() {
		if c.Name == csrfCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, token, cookie.Value)
	return token, cookie
}

func TestCSRFMiddleware(t *testing.T) {
	setupCSRFConfig(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := CSRFMiddleware()(next)

	t.Run("GET passes without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/balance", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("POST without token rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("POST with matching signed token passes", func(t *testing.T) {
		token, cookie := issueCSRFToken(t)
		r := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
		r.Header.Set("X-CSRF-Token", token)
		r.AddCookie(cookie)

		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("POST with forged token rejected", func(t *testing.T) {
		forged := "forgedvalue.forgedsignature"
		r := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)
		r.Header.Set("X-CSRF-Token", forged)
		r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: forged})

		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
