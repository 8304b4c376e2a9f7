package memory

import (
	"time"

	"support-chat-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionRepository tracks live websocket sessions. Entries are TTL-evicted
// as a safety net; the normal path deletes them on disconnect.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes. A healthy
	// connection refreshes its entry on every room join.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *entity.ChatSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*entity.ChatSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.ChatSession), true
	}
	return nil, false
}

// AddRoom records a room membership on the session, refreshing its TTL.
// Joining the same room twice is a no-op, matching the hub's idempotent join.
func (r *SessionRepository) AddRoom(sessionID, room string) {
	session, found := r.Get(sessionID)
	if !found {
		return
	}
	for _, joined := range session.Rooms {
		if joined == room {
			return
		}
	}
	session.Rooms = append(session.Rooms, room)
	r.cache.Set(sessionID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
