package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lms-api/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore guarda el snapshot de usuario por id con expiracion
// absoluta. La ausencia de la entrada revoca la sesion aunque el token
// siga siendo criptograficamente valido. Put renueva el TTL; Get nunca
// lo extiende.
type SessionStore interface {
	Put(ctx context.Context, userID string, snapshot domain.SessionSnapshot, ttl time.Duration) error
	Get(ctx context.Context, userID string) (domain.SessionSnapshot, error)
	Delete(ctx context.Context, userID string) error
}

type memorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memorySessionEntry
}

type memorySessionEntry struct {
	snapshot  domain.SessionSnapshot
	expiresAt time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		entries: make(map[string]memorySessionEntry),
	}
}

func (s *memorySessionStore) Put(_ context.Context, userID string, snapshot domain.SessionSnapshot, ttl time.Duration) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = memorySessionEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, userID string) (domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok {
		return domain.SessionSnapshot{}, ErrSessionNotFound
	}
	if time.Now().UTC().After(entry.expiresAt) {
		delete(s.entries, userID)
		return domain.SessionSnapshot{}, ErrSessionNotFound
	}
	return entry.snapshot, nil
}

func (s *memorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// redisKV es el subconjunto del cliente de redis que usan los stores.
type redisKV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionStore struct {
	client redisKV
	prefix string
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "session:",
	}
}

func (s *redisSessionStore) Put(ctx context.Context, userID string, snapshot domain.SessionSnapshot, ttl time.Duration) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+userID, payload, ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, userID string) (domain.SessionSnapshot, error) {
	payload, err := s.client.Get(ctx, s.prefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionSnapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	var snapshot domain.SessionSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return domain.SessionSnapshot{}, err
	}
	return snapshot, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.prefix+userID).Err()
}
