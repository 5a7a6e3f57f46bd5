package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"coffeebot/internal/domain"
	"coffeebot/internal/repository"
)

var (
	ErrSessionNotConfigured = errors.New("session not configured")
	ErrSessionBusy          = errors.New("session busy: another prompt is in flight")
)

// Session es el dueño explícito de una transcripción. Se pasa por referencia
// a ChatService en cada prompt; nunca se comparte entre sesiones.
type Session struct {
	id   string
	repo repository.TranscriptRepository

	inFlight sync.Mutex

	mu       sync.Mutex
	onClear  func()
	lastSeen time.Time
}

func NewSession(id string, repo repository.TranscriptRepository) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{id: id, repo: repo, lastSeen: time.Now().UTC()}
}

func (s *Session) ID() string {
	return s.id
}

// OnClear registra el callback que pide a la capa de presentación redibujar todo.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = fn
}

// Append agrega un turno al final. Solo valida el rol.
func (s *Session) Append(ctx context.Context, turn domain.ChatTurn) error {
	if s == nil || s.repo == nil {
		return ErrSessionNotConfigured
	}
	if !turn.Role.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, turn.Role)
	}
	return s.repo.Append(ctx, s.id, turn)
}

// Clear vacía la transcripción y dispara el callback de redibujado.
// Con un prompt en curso devuelve ErrSessionBusy: la respuesta pendiente
// quedaría sola en una transcripción recién vaciada.
func (s *Session) Clear(ctx context.Context) error {
	if s == nil || s.repo == nil {
		return ErrSessionNotConfigured
	}
	if !s.inFlight.TryLock() {
		return ErrSessionBusy
	}
	defer s.inFlight.Unlock()

	if err := s.repo.Clear(ctx, s.id); err != nil {
		return err
	}
	s.mu.Lock()
	fn := s.onClear
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// Busy informa si hay un prompt en curso. Solo consulta: Handle vuelve a tomar el lock.
func (s *Session) Busy() bool {
	if s == nil {
		return false
	}
	if !s.inFlight.TryLock() {
		return true
	}
	s.inFlight.Unlock()
	return false
}

// Snapshot devuelve una copia de solo lectura en orden cronológico.
func (s *Session) Snapshot(ctx context.Context) ([]domain.ChatTurn, error) {
	if s == nil || s.repo == nil {
		return nil, ErrSessionNotConfigured
	}
	turns, err := s.repo.List(ctx, s.id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionManager mantiene las sesiones vivas del servidor web.
// Las sesiones inactivas más de idleTTL se descartan junto con su transcripción.
type SessionManager struct {
	mu       sync.Mutex
	repo     repository.TranscriptRepository
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessionManager(repo repository.TranscriptRepository, idleTTL time.Duration) *SessionManager {
	if idleTTL <= 0 {
		idleTTL = 24 * time.Hour
	}
	return &SessionManager{
		repo:     repo,
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Open devuelve la sesión con ese id, creándola si no existe. Un id vacío genera uno nuevo.
// Las transcripciones de sesiones vencidas se borran fuera del lock del manager.
func (m *SessionManager) Open(ctx context.Context, id string) *Session {
	m.mu.Lock()
	now := m.now()
	expired := m.pruneLocked(now)

	sess, ok := m.sessions[id]
	if !ok || id == "" {
		sess = NewSession(id, m.repo)
		m.sessions[sess.ID()] = sess
	}
	sess.touch(now)
	m.mu.Unlock()

	m.clearExpired(ctx, expired)
	return sess
}

// Len devuelve la cantidad de sesiones en memoria.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// pruneLocked saca del mapa las sesiones vencidas y las devuelve con su
// inFlight tomado. Las sesiones ocupadas se saltean.
func (m *SessionManager) pruneLocked(now time.Time) []*Session {
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.idleSince(now) <= m.idleTTL {
			continue
		}
		if !sess.inFlight.TryLock() {
			continue
		}
		delete(m.sessions, id)
		expired = append(expired, sess)
	}
	return expired
}

func (m *SessionManager) clearExpired(ctx context.Context, expired []*Session) {
	if len(expired) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, sess := range expired {
		_ = m.repo.Clear(ctx, sess.ID())
		sess.inFlight.Unlock()
	}
}
