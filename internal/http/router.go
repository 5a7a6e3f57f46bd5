package http

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coffeebot/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

// NewRouter configura el router de Gin: página HTML del chat, API JSON y healthcheck.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	tokens *service.SessionTokenService,
	sessions *service.SessionManager,
	secureCookie bool,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	withSession := SessionMiddleware(logger, tokens, sessions, secureCookie)

	page := r.Group("/", withSession)
	page.GET("/", chatH.Index)
	page.POST("/chat", chatH.Submit)
	page.POST("/chat/clear", chatH.Clear)

	api := r.Group("/api", withSession, jsonContentTypeMiddleware())
	api.GET("/transcript", chatH.GetTranscript)
	api.POST("/messages", chatH.PostMessage)
	api.DELETE("/transcript", chatH.DeleteTranscript)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
