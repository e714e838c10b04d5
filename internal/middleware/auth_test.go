package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestEngine(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("breadit_test", cookie.NewStore([]byte("0123456789abcdef0123456789abcdef"))))
	r.Use(LoadViewer(), RequestLogger(logger))
	r.GET("/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserKey, c.Param("id"))
		_ = session.Save()
		c.Status(http.StatusNoContent)
	})
	r.GET("/whoami", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, ViewerID(c))
	})
	return r
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	r := newTestEngine(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthenticated","message":"sign in required"}`, w.Body.String())
}

func TestLoadViewerFromSession(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := newTestEngine(zap.New(core))

	login := httptest.NewRecorder()
	r.ServeHTTP(login, httptest.NewRequest(http.MethodGet, "/login/user-42", nil))
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())

	entries := logs.FilterField(zap.String("viewer_id", "user-42")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/whoami", entries[0].ContextMap()["path"])
}
