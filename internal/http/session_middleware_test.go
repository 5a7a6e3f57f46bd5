package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coffeebot/internal/repository"
	"coffeebot/internal/service"
)

func setupSessionRouter(tokens *service.SessionTokenService, sessions *service.SessionManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", SessionMiddleware(zap.NewNop(), tokens, sessions, true), func(c *gin.Context) {
		sess, ok := GetSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.ID())
	})
	return r
}

func TestSessionMiddleware_IssuesCookieOnce(t *testing.T) {
	tokens := service.NewSessionTokenService("secret", time.Hour)
	sessions := service.NewSessionManager(repository.NewMemoryTranscriptRepository(), time.Hour)
	r := setupSessionRouter(tokens, sessions)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)
	if !cookie.Secure || cookie.MaxAge != 3600 {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	firstID := rec.Body.String()

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != firstID {
		t.Fatalf("expected same session %q, got %q", firstID, rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("valid cookie should not be reissued")
	}
}

func TestSessionMiddleware_ReplacesForgedCookie(t *testing.T) {
	tokens := service.NewSessionTokenService("secret", time.Hour)
	sessions := service.NewSessionManager(repository.NewMemoryTranscriptRepository(), time.Hour)
	r := setupSessionRouter(tokens, sessions)

	forged, _ := service.NewSessionTokenService("attacker", time.Hour).Issue("victim-session")
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: forged})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Body.String() == "victim-session" {
		t.Fatalf("forged cookie must not grant access to another session")
	}
	_ = sessionCookie(t, rec)
}

func TestSessionMiddleware_NotConfigured(t *testing.T) {
	r := setupSessionRouter(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
