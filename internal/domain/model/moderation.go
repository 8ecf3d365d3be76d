package model

import "time"

// RuleSet holds the per-conversation content-rule toggles. Each rule is
// independently switchable by the conversation's administrators.
type RuleSet struct {
	AntiSpam     bool     `json:"anti_spam"`
	AntiCaps     bool     `json:"anti_caps"`
	AntiRepeated bool     `json:"anti_repeated"`
	AntiLinks    bool     `json:"anti_links"`
	BannedWords  []string `json:"banned_words"`
}

type Warning struct {
	Reason   string    `json:"reason"`
	IssuedAt time.Time `json:"issued_at"`
}

type WarningRecord struct {
	Count    int       `json:"count"`
	Warnings []Warning `json:"warnings"`
}

type Mute struct {
	Reason   string    `json:"reason"`
	MutedAt  time.Time `json:"muted_at"`
	UnmuteAt time.Time `json:"unmute_at"`
}

// Active reports whether the mute still applies at the given instant.
// Expiry is a wall-clock comparison; entries are never actively evicted.
func (m Mute) Active(now time.Time) bool {
	return now.Before(m.UnmuteAt)
}

type ConversationStats struct {
	MessagesSeen int64 `json:"messages_seen"`
	SpamBlocked  int64 `json:"spam_blocked"`
	UsersKicked  int64 `json:"users_kicked"`
}

// ConversationState is the canonical moderation state for one group chat.
// Platform side effects (delete, kick) may fail, but transitions recorded
// here always commit.
type ConversationState struct {
	ConversationID    int64                    `json:"conversation_id"`
	Title             string                   `json:"title"`
	Rules             RuleSet                  `json:"rules"`
	EscalationCeiling int                      `json:"escalation_ceiling"`
	Warnings          map[int64]*WarningRecord `json:"warnings"`
	Mutes             map[int64]*Mute          `json:"mutes"`
	Removed           map[int64]time.Time      `json:"removed"`
	Stats             ConversationStats        `json:"stats"`
	CreatedAt         time.Time                `json:"created_at"`
}
