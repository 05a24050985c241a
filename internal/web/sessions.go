package web

import (
	"sync"
	"time"

	"ayurdiag/internal/diagnosis"
)

// sessionTTL is how long an idle chat session is kept.
const sessionTTL = 2 * time.Hour

type session struct {
	conv     *diagnosis.Conversation
	lastUsed time.Time
}

// Sessions holds chat conversations by ID.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*session
	now   func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{items: map[string]*session{}, now: time.Now}
}

// Get returns the conversation for id, creating a new one when id is empty
// or unknown. Idle sessions are dropped on the way.
func (s *Sessions) Get(id string) *diagnosis.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, sess := range s.items {
		if now.Sub(sess.lastUsed) > sessionTTL {
			delete(s.items, k)
		}
	}
	if sess, ok := s.items[id]; ok && id != "" {
		sess.lastUsed = now
		return sess.conv
	}
	conv := diagnosis.NewConversation()
	s.items[conv.ID] = &session{conv: conv, lastUsed: now}
	return conv
}

// Delete removes a session and reports whether it existed.
func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
