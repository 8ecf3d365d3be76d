package model

import (
	"time"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
)

// ActorKey identifies a platform user within one conversation.
type ActorKey struct {
	ConversationID int64
	UserID         int64
}

type RecentMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Actor is the per-(user, conversation) dispatch record. Created on the
// first observed message and mutated on every one after that; it is never
// deleted.
type Actor struct {
	Key             ActorKey        `json:"-"`
	Username        string          `json:"username"`
	Language        enums.Language  `json:"language"`
	Context         string          `json:"context"`
	RecentMessages  []RecentMessage `json:"recent_messages"`
	SpamScore       int64           `json:"spam_score"`
	MessageCount    int64           `json:"message_count"`
	FirstSeenAt     time.Time       `json:"first_seen_at"`
	LastInteraction time.Time       `json:"last_interaction"`
}
