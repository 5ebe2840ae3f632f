package httpapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultMaxSessions = 1000

type session struct {
	bot      Bot
	lastUsed time.Time
}

// sessionStore maps session ids to their own bots. When full, the least
// recently used session is dropped.
type sessionStore struct {
	newBot func() Bot
	limit  int

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(newBot func() Bot, limit int) *sessionStore {
	if limit <= 0 {
		limit = defaultMaxSessions
	}
	return &sessionStore{newBot: newBot, limit: limit, sessions: make(map[string]*session)}
}

// get returns the bot for id, creating a session when id is empty or unknown.
func (s *sessionStore) get(id string) (string, Bot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastUsed = time.Now()
		return id, sess.bot
	}
	if id == "" {
		id = uuid.New().String()
	}
	if len(s.sessions) >= s.limit {
		s.evictOldest()
	}
	sess := &session{bot: s.newBot(), lastUsed: time.Now()}
	s.sessions[id] = sess
	return id, sess.bot
}

func (s *sessionStore) lookup(id string) (Bot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastUsed = time.Now()
	return sess.bot, true
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastUsed.Before(oldest) {
			oldestID, oldest = id, sess.lastUsed
		}
	}
	delete(s.sessions, oldestID)
}
