package http

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coffeebot/internal/domain"
	"coffeebot/internal/service"
)

var errRateLimited = errors.New("too many prompts, slow down")

// Avisos que la página muestra después de un redirect.
var notices = map[string]string{
	"busy":    "Still brewing your previous answer, hang on a moment.",
	"limited": "That's a lot of questions! Give it a minute and try again.",
	"error":   "We couldn't save that message. Please try again.",
}

// ChatHandler mantiene dependencias para la página del chat y la API JSON.
type ChatHandler struct {
	logger  *zap.Logger
	chat    *service.ChatService
	limiter service.PromptRateLimiter
}

func NewChatHandler(logger *zap.Logger, chat *service.ChatService, limiter service.PromptRateLimiter) *ChatHandler {
	return &ChatHandler{
		logger:  logger,
		chat:    chat,
		limiter: limiter,
	}
}

type pageTurn struct {
	domain.ChatTurn
	HTML      template.HTML
	ShowAgent bool
}

// Index maneja GET /: dibuja la transcripción completa.
func (h *ChatHandler) Index(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.String(http.StatusInternalServerError, "session missing")
		return
	}

	turns, err := sess.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("snapshot transcript failed", zap.Error(err), zap.String("session_id", sess.ID()))
		c.String(http.StatusInternalServerError, "could not load chat history")
		return
	}

	view := make([]pageTurn, 0, len(turns))
	for _, t := range turns {
		view = append(view, pageTurn{
			ChatTurn:  t,
			HTML:      renderMarkdown(t.Content),
			ShowAgent: t.Role == domain.RoleAssistant && t.Agent != "" && t.Agent != domain.AgentNone,
		})
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Turns":  view,
		"Notice": notices[c.Query("notice")],
	})
}

// Submit maneja POST /chat desde el formulario.
func (h *ChatHandler) Submit(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.String(http.StatusInternalServerError, "session missing")
		return
	}

	prompt := strings.TrimSpace(c.PostForm("prompt"))
	if prompt == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if _, status, err := h.submit(c.Request.Context(), sess, prompt); err != nil {
		c.Redirect(http.StatusSeeOther, "/?notice="+noticeFor(status))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Clear maneja POST /chat/clear. El redirect fuerza el redibujado completo.
func (h *ChatHandler) Clear(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.String(http.StatusInternalServerError, "session missing")
		return
	}
	if err := sess.Clear(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrSessionBusy) {
			c.Redirect(http.StatusSeeOther, "/?notice=busy")
			return
		}
		h.logger.Error("clear transcript failed", zap.Error(err), zap.String("session_id", sess.ID()))
		c.Redirect(http.StatusSeeOther, "/?notice=error")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// GetTranscript maneja GET /api/transcript.
func (h *ChatHandler) GetTranscript(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session missing"})
		return
	}
	turns, err := sess.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("snapshot transcript failed", zap.Error(err), zap.String("session_id", sess.ID()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load transcript"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID(),
		"turns":      turns,
	})
}

// PostMessage maneja POST /api/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session missing"})
		return
	}

	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	turn, status, err := h.submit(c.Request.Context(), sess, prompt)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_message":      domain.UserTurn(prompt),
		"assistant_message": turn,
	})
}

// DeleteTranscript maneja DELETE /api/transcript.
func (h *ChatHandler) DeleteTranscript(c *gin.Context) {
	sess, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session missing"})
		return
	}
	if err := sess.Clear(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrSessionBusy) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("clear transcript failed", zap.Error(err), zap.String("session_id", sess.ID()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear transcript"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"turns": []domain.ChatTurn{}})
}

// submit no descuenta cupo del limiter cuando la sesión ya está ocupada.
func (h *ChatHandler) submit(ctx context.Context, sess *service.Session, prompt string) (domain.ChatTurn, int, error) {
	if sess.Busy() {
		return domain.ChatTurn{}, http.StatusConflict, service.ErrSessionBusy
	}
	if h.limiter != nil && !h.limiter.Allow(sess.ID()) {
		return domain.ChatTurn{}, http.StatusTooManyRequests, errRateLimited
	}

	turn, err := h.chat.Handle(ctx, sess, prompt)
	switch {
	case err == nil:
		return turn, http.StatusCreated, nil
	case errors.Is(err, service.ErrSessionBusy):
		return turn, http.StatusConflict, err
	default:
		h.logger.Error("chat handle failed", zap.Error(err), zap.String("session_id", sess.ID()))
		return turn, http.StatusInternalServerError, errors.New("could not process message")
	}
}

func noticeFor(status int) string {
	switch status {
	case http.StatusConflict:
		return "busy"
	case http.StatusTooManyRequests:
		return "limited"
	default:
		return "error"
	}
}
