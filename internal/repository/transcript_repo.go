package repository

import (
	"context"
	"sync"

	"coffeebot/internal/domain"
)

// TranscriptRepository guarda la transcripción de cada sesión de chat.
// Solo permite agregar turnos, leerlos completos o borrarlos todos.
type TranscriptRepository interface {
	Append(ctx context.Context, sessionID string, turn domain.ChatTurn) error
	List(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
	Clear(ctx context.Context, sessionID string) error
}

type MemoryTranscriptRepository struct {
	mu    sync.RWMutex
	items map[string][]domain.ChatTurn
}

func NewMemoryTranscriptRepository() *MemoryTranscriptRepository {
	return &MemoryTranscriptRepository{items: make(map[string][]domain.ChatTurn)}
}

func (r *MemoryTranscriptRepository) Append(_ context.Context, sessionID string, turn domain.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[sessionID] = append(r.items[sessionID], turn)
	return nil
}

func (r *MemoryTranscriptRepository) List(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	turns := r.items[sessionID]
	out := make([]domain.ChatTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (r *MemoryTranscriptRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, sessionID)
	return nil
}
