package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coffeebot/internal/service"
)

const (
	sessionCookieName = "coffeebot_session"
	sessionKey        = "chat_session"
)

// SessionMiddleware resuelve la sesión del navegador desde la cookie firmada.
// Si la cookie falta o no es válida se abre una sesión nueva y se emite otra cookie.
func SessionMiddleware(
	logger *zap.Logger,
	tokens *service.SessionTokenService,
	sessions *service.SessionManager,
	secure bool,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil || sessions == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sessions not configured"})
			c.Abort()
			return
		}

		var sessionID string
		if raw, err := c.Cookie(sessionCookieName); err == nil {
			claims, err := tokens.Parse(raw)
			if err == nil {
				sessionID = claims.SessionID
			} else {
				logger.Debug("discarding session cookie", zap.Error(err))
			}
		}

		sess := sessions.Open(c.Request.Context(), sessionID)
		if sessionID == "" {
			token, err := tokens.Issue(sess.ID())
			if err != nil {
				logger.Error("issue session token failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open session"})
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookieName, token, int(tokens.TTL().Seconds()), "/", "", secure, true)
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// GetSession obtiene la sesión de chat desde el contexto.
func GetSession(c *gin.Context) (*service.Session, bool) {
	val, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := val.(*service.Session)
	return sess, ok && sess != nil
}
