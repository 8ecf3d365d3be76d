package actors

import (
	"sync"
	"time"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

const contextMaxLen = 500

type entry struct {
	mu    sync.Mutex
	actor model.Actor
	dirty bool
}

// Service owns the soft-persistent Actor records. Entries are created on
// the first observed message and never deleted; each entry carries its own
// lock so parallel conversations never serialize behind one mutex.
type Service struct {
	mu          sync.Mutex
	actors      map[model.ActorKey]*entry
	historySize int
	now         func() time.Time
}

func NewService(historySize int) *Service {
	if historySize <= 0 {
		historySize = 10
	}

	return &Service{
		actors:      make(map[model.ActorKey]*entry),
		historySize: historySize,
		now:         time.Now,
	}
}

func (s *Service) get(key model.ActorKey) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.actors[key]
	if !ok {
		e = &entry{actor: model.Actor{
			Key:            key,
			Language:       enums.LanguageUnset,
			RecentMessages: make([]model.RecentMessage, 0, s.historySize),
			FirstSeenAt:    s.now(),
		}}
		s.actors[key] = e
	}
	return e
}

// Observe records an inbound message: append to the bounded recent history
// (oldest evicted first) and update counters.
func (s *Service) Observe(key model.ActorKey, username, content string) {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.now()
	if username != "" {
		e.actor.Username = username
	}
	e.actor.RecentMessages = append(e.actor.RecentMessages, model.RecentMessage{
		Content:   content,
		Timestamp: now,
	})
	if len(e.actor.RecentMessages) > s.historySize {
		e.actor.RecentMessages = e.actor.RecentMessages[len(e.actor.RecentMessages)-s.historySize:]
	}
	e.actor.MessageCount++
	e.actor.LastInteraction = now
	e.dirty = true
}

func (s *Service) RecentMessages(key model.ActorKey) []model.RecentMessage {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.RecentMessage, len(e.actor.RecentMessages))
	copy(out, e.actor.RecentMessages)
	return out
}

// BumpSpamScore increments the monotonic spam counter; it is never reset.
func (s *Service) BumpSpamScore(key model.ActorKey) int64 {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.actor.SpamScore++
	e.dirty = true
	return e.actor.SpamScore
}

func (s *Service) Language(key model.ActorKey) enums.Language {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.actor.Language
}

func (s *Service) SetLanguage(key model.ActorKey, lang enums.Language) {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actor.Language = lang
	e.dirty = true
}

func (s *Service) Context(key model.ActorKey) string {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.actor.Context
}

// SetContext keeps the trailing summary of the last exchange, capped so the
// prompt stays small.
func (s *Service) SetContext(key model.ActorKey, summary string) {
	e := s.get(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	if runes := []rune(summary); len(runes) > contextMaxLen {
		summary = string(runes[len(runes)-contextMaxLen:])
	}
	e.actor.Context = summary
	e.dirty = true
}

// DirtySnapshots returns copies of every mutated actor since the previous
// call and clears their dirty marks. The background flusher persists the
// snapshots; the hot path never waits on the durable store.
func (s *Service) DirtySnapshots() []model.Actor {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.actors))
	for _, e := range s.actors {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	var out []model.Actor
	for _, e := range entries {
		e.mu.Lock()
		if e.dirty {
			snapshot := e.actor
			snapshot.RecentMessages = append([]model.RecentMessage(nil), e.actor.RecentMessages...)
			out = append(out, snapshot)
			e.dirty = false
		}
		e.mu.Unlock()
	}
	return out
}
