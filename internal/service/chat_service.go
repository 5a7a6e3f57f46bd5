package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"coffeebot/internal/domain"
	"coffeebot/internal/invoker"
)

var ErrChatServiceNotConfigured = errors.New("chat service not configured")

// Result es el resultado de una invocación remota: un turno listo o un fallo.
type Result struct {
	reply domain.ChatTurn
	fault error
}

func Success(turn domain.ChatTurn) Result {
	return Result{reply: turn}
}

func Fault(err error) Result {
	if err == nil {
		err = errors.New("unknown fault")
	}
	return Result{fault: err}
}

// Err devuelve el fallo, o nil si la invocación produjo una respuesta.
func (r Result) Err() error {
	return r.fault
}

// Turn resuelve el resultado al turno que se agrega a la transcripción.
func (r Result) Turn() domain.ChatTurn {
	if r.fault != nil {
		return domain.ErrorTurn(r.fault.Error())
	}
	return r.reply
}

// ChatService convierte un prompt del usuario en exactamente una llamada a la
// función remota y un turno de asistente (o de error).
type ChatService struct {
	invoker    invoker.Invoker
	windowSize int
	logger     *zap.Logger
}

func NewChatService(inv invoker.Invoker, windowSize int, logger *zap.Logger) *ChatService {
	if windowSize <= 0 {
		windowSize = DefaultContextWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		invoker:    inv,
		windowSize: windowSize,
		logger:     logger,
	}
}

// Handle agrega el prompt, invoca la función con la ventana de contexto y
// agrega la respuesta. Los fallos remotos nunca se devuelven como error: se
// convierten en un turno visible. El error solo reporta problemas de la sesión
// o de su almacenamiento.
func (s *ChatService) Handle(ctx context.Context, sess *Session, prompt string) (domain.ChatTurn, error) {
	if s == nil || s.invoker == nil {
		return domain.ChatTurn{}, ErrChatServiceNotConfigured
	}
	if sess == nil {
		return domain.ChatTurn{}, ErrSessionNotConfigured
	}
	if !sess.inFlight.TryLock() {
		return domain.ChatTurn{}, ErrSessionBusy
	}
	defer sess.inFlight.Unlock()

	// Las escrituras no dependen de la request: si el cliente se va a mitad de
	// la invocación el turno de error igual tiene que quedar guardado.
	store := context.WithoutCancel(ctx)

	prior, err := sess.Snapshot(ctx)
	if err != nil {
		return domain.ChatTurn{}, fmt.Errorf("snapshot transcript: %w", err)
	}
	if err := sess.Append(store, domain.UserTurn(prompt)); err != nil {
		return domain.ChatTurn{}, fmt.Errorf("append user turn: %w", err)
	}

	window := BuildContextWindow(prior, prompt, s.windowSize)
	result := s.Invoke(ctx, window)
	if err := result.Err(); err != nil {
		s.logger.Warn("remote invocation fault",
			zap.String("session_id", sess.ID()),
			zap.Error(err),
		)
	}

	turn := result.Turn()
	if err := sess.Append(store, turn); err != nil {
		return turn, fmt.Errorf("append assistant turn: %w", err)
	}
	return turn, nil
}

// Invoke hace una única llamada con la ventana dada y clasifica la respuesta.
// No tiene estado: el mismo envelope produce siempre el mismo resultado.
func (s *ChatService) Invoke(ctx context.Context, window []string) Result {
	payload, err := json.Marshal(domain.NewRequestPayload(window))
	if err != nil {
		return Fault(err)
	}

	start := time.Now()
	raw, err := s.invoker.Invoke(ctx, payload)
	if err != nil {
		return Fault(err)
	}

	env, err := domain.ParseEnvelope(raw)
	if err != nil {
		return Fault(err)
	}
	turn, err := domain.ReplyFromEnvelope(env)
	if err != nil {
		return Fault(err)
	}

	s.logger.Info("remote invocation",
		zap.Int("context_messages", len(window)),
		zap.Bool("status_ok", env.OK()),
		zap.String("agent", turn.Agent),
		zap.Duration("latency", time.Since(start)),
	)
	return Success(turn)
}
