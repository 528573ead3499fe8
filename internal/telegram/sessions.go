package telegram

import (
	"sync"
	"time"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/tutor"
)

type chatEntry struct {
	session  *tutor.Session
	lastUsed time.Time
}

// Sessions maps chat IDs to independent tutor sessions.
type Sessions struct {
	mu    sync.Mutex
	chats map[int64]*chatEntry
	lang  i18n.Language
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(lang i18n.Language, ttl time.Duration) *Sessions {
	return &Sessions{
		chats: make(map[int64]*chatEntry),
		lang:  lang,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the chat's session, creating it on first use.
func (s *Sessions) Get(chatID int64) *tutor.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.chats[chatID]
	if !ok {
		e = &chatEntry{session: tutor.New(s.lang, true)}
		s.chats[chatID] = e
	}
	e.lastUsed = s.now()
	return e.session
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chats)
}

// Sweep drops chats idle since before now-ttl, skipping any with a solve
// in flight, and returns how many were dropped.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	n := 0
	for id, e := range s.chats {
		if e.lastUsed.Before(cutoff) && !e.session.Loading() {
			delete(s.chats, id)
			n++
		}
	}
	return n
}
