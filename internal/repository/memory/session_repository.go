package memory

import (
	"time"

	"rag-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live conversation sessions in process memory.
// Idle sessions expire after an hour; the durable transcript survives in
// Postgres and is rehydrated on the next request.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration of 1 hour, purge expired entries every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// GetOrCreate returns the live session for sessionID, creating and caching
// an empty one when none exists yet. A freshly created session is not
// hydrated; the caller decides whether to load the durable transcript.
func (r *SessionRepository) GetOrCreate(sessionID string) *store.Session {
	if s, found := r.Get(sessionID); found {
		return s
	}
	s := store.NewSession(sessionID)
	r.Save(s)
	return s
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
