package moderation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

type Action string

const (
	ActionNone       Action = "none"
	ActionSuppressed Action = "suppressed"
	ActionWarned     Action = "warned"
	ActionRemoved    Action = "removed"
)

const (
	ReasonExcessiveCaps  = "Excessive caps"
	ReasonRepeatedChars  = "Repeated characters"
	ReasonLinksForbidden = "Links not allowed"
	ReasonBannedWord     = "Banned word used"
)

var urlPattern = regexp.MustCompile(`(?i)https?://|www\.`)

// Platform covers the boundary actions the engine may attempt. Failures
// are logged and swallowed: the canonical state lives here, not in the
// platform's side effects.
type Platform interface {
	DeleteMessage(ctx context.Context, conversationID int64, messageID int) error
	RemoveActor(ctx context.Context, conversationID, actorID int64) error
}

type Message struct {
	ConversationID int64
	MessageID      int
	ActorID        int64
	Role           enums.Role
	Content        string
}

type Outcome struct {
	Action       Action
	Reason       string
	WarningCount int
	// Notice is the user-visible text for warn/remove outcomes; empty for
	// silent suppression.
	Notice string
}

type Config struct {
	DefaultRules        model.RuleSet
	CapsMinLength       int
	RepeatedRunLength   int
	EscalationCeiling   int
	DefaultMuteDuration time.Duration
}

type convEntry struct {
	mu    sync.Mutex
	state model.ConversationState
	dirty bool
}

// Engine runs the per-(conversation, actor) escalation state machine:
// Clear -> Warned(n) -> Removed, with Muted reachable from any non-removed
// state through the administrative side channel.
type Engine struct {
	mu            sync.Mutex
	conversations map[int64]*convEntry
	cfg           Config
	platform      Platform
	logger        *zap.Logger
	now           func() time.Time
}

func NewEngine(cfg Config, platform Platform, logger *zap.Logger) *Engine {
	if cfg.CapsMinLength <= 0 {
		cfg.CapsMinLength = 10
	}
	if cfg.RepeatedRunLength <= 0 {
		cfg.RepeatedRunLength = 10
	}
	if cfg.EscalationCeiling <= 0 {
		cfg.EscalationCeiling = 3
	}
	if cfg.DefaultMuteDuration <= 0 {
		cfg.DefaultMuteDuration = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		conversations: make(map[int64]*convEntry),
		cfg:           cfg,
		platform:      platform,
		logger:        logger,
		now:           time.Now,
	}
}

func (e *Engine) conv(conversationID int64) *convEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.conversations[conversationID]
	if !ok {
		entry = &convEntry{state: model.ConversationState{
			ConversationID:    conversationID,
			Rules:             e.cfg.DefaultRules,
			EscalationCeiling: e.cfg.EscalationCeiling,
			Warnings:          make(map[int64]*model.WarningRecord),
			Mutes:             make(map[int64]*model.Mute),
			Removed:           make(map[int64]time.Time),
			CreatedAt:         e.now(),
		}}
		e.conversations[conversationID] = entry
	}
	return entry
}

// Rules returns the conversation's current rule toggles, creating default
// state on first sight of the conversation.
func (e *Engine) Rules(conversationID int64) model.RuleSet {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Rules
}

// Check evaluates one message. Mute suppression runs first; then the
// enabled content rules in fixed order, first match wins. A violation
// increments the warning count, and reaching the escalation ceiling
// triggers a removal attempt unless the actor holds a privileged role.
func (e *Engine) Check(ctx context.Context, msg Message) Outcome {
	entry := e.conv(msg.ConversationID)
	entry.mu.Lock()
	state := &entry.state
	state.Stats.MessagesSeen++
	now := e.now()

	if mute, ok := state.Mutes[msg.ActorID]; ok && mute.Active(now) {
		entry.dirty = true
		entry.mu.Unlock()
		e.deleteAtBoundary(ctx, msg)
		return Outcome{Action: ActionSuppressed, Reason: mute.Reason}
	}

	reason, violated := e.firstViolation(state.Rules, msg.Content)
	if !violated {
		entry.dirty = true
		entry.mu.Unlock()
		return Outcome{Action: ActionNone}
	}

	record, ok := state.Warnings[msg.ActorID]
	if !ok {
		record = &model.WarningRecord{}
		state.Warnings[msg.ActorID] = record
	}
	record.Count++
	record.Warnings = append(record.Warnings, model.Warning{Reason: reason, IssuedAt: now})
	entry.dirty = true

	count := record.Count
	ceiling := state.EscalationCeiling

	if count < ceiling {
		entry.mu.Unlock()
		return Outcome{
			Action:       ActionWarned,
			Reason:       reason,
			WarningCount: count,
			Notice:       warningNotice(reason, count, ceiling),
		}
	}

	// Ceiling reached: privileged actors are warned but never removed.
	if msg.Role.Privileged() {
		entry.mu.Unlock()
		e.logger.Warn("refusing to remove privileged actor",
			zap.Int64("conversation_id", msg.ConversationID),
			zap.Int64("actor_id", msg.ActorID),
			zap.String("role", string(msg.Role)),
			zap.Int("warnings", count))
		return Outcome{
			Action:       ActionWarned,
			Reason:       reason,
			WarningCount: count,
			Notice:       warningNotice(reason, count, ceiling),
		}
	}

	if _, alreadyRemoved := state.Removed[msg.ActorID]; alreadyRemoved {
		entry.mu.Unlock()
		return Outcome{Action: ActionRemoved, Reason: reason, WarningCount: count}
	}

	state.Removed[msg.ActorID] = now
	state.Stats.UsersKicked++
	entry.mu.Unlock()

	if err := e.platform.RemoveActor(ctx, msg.ConversationID, msg.ActorID); err != nil {
		e.logger.Error("platform removal failed, state transition kept",
			zap.Int64("conversation_id", msg.ConversationID),
			zap.Int64("actor_id", msg.ActorID),
			zap.Error(err))
	}

	return Outcome{
		Action:       ActionRemoved,
		Reason:       reason,
		WarningCount: count,
		Notice:       fmt.Sprintf("🚫 User removed for exceeding the warning limit (%d warnings)", count),
	}
}

func (e *Engine) firstViolation(rules model.RuleSet, content string) (string, bool) {
	if rules.AntiCaps && isExcessiveCaps(content, e.cfg.CapsMinLength) {
		return ReasonExcessiveCaps, true
	}
	if rules.AntiRepeated && hasRepeatedRun(content, e.cfg.RepeatedRunLength) {
		return ReasonRepeatedChars, true
	}
	if rules.AntiLinks && urlPattern.MatchString(content) {
		return ReasonLinksForbidden, true
	}
	if containsBannedWord(content, rules.BannedWords) {
		return ReasonBannedWord, true
	}
	return "", false
}

func (e *Engine) deleteAtBoundary(ctx context.Context, msg Message) {
	if msg.MessageID == 0 {
		return
	}
	if err := e.platform.DeleteMessage(ctx, msg.ConversationID, msg.MessageID); err != nil {
		e.logger.Warn("could not delete suppressed message",
			zap.Int64("conversation_id", msg.ConversationID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err))
	}
}

// Mute places the actor in the parallel muted state. It is independent of
// the warning counter in both directions.
func (e *Engine) Mute(conversationID, actorID int64, reason string, duration time.Duration) model.Mute {
	if duration <= 0 {
		duration = e.cfg.DefaultMuteDuration
	}

	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := e.now()
	mute := model.Mute{Reason: reason, MutedAt: now, UnmuteAt: now.Add(duration)}
	entry.state.Mutes[actorID] = &mute
	entry.dirty = true
	return mute
}

func (e *Engine) Unmute(conversationID, actorID int64) {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	delete(entry.state.Mutes, actorID)
	entry.dirty = true
}

// ResetWarnings is the only way a warning count decreases.
func (e *Engine) ResetWarnings(conversationID, actorID int64) {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	delete(entry.state.Warnings, actorID)
	entry.dirty = true
}

func (e *Engine) Warnings(conversationID, actorID int64) int {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if record, ok := entry.state.Warnings[actorID]; ok {
		return record.Count
	}
	return 0
}

// RecordSpamBlocked counts a suppressed spam message in the conversation
// stats. Spam never touches the warning ladder.
func (e *Engine) RecordSpamBlocked(conversationID int64) {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.state.Stats.SpamBlocked++
	entry.dirty = true
}

func (e *Engine) KickedCount(conversationID int64) int64 {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.Stats.UsersKicked
}

func (e *Engine) UpdateRules(conversationID int64, rules model.RuleSet) {
	entry := e.conv(conversationID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.state.Rules = rules
	entry.dirty = true
}

// Seed loads previously persisted conversation states, typically at
// startup before the listener starts.
func (e *Engine) Seed(states []model.ConversationState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, st := range states {
		st := st
		if st.Warnings == nil {
			st.Warnings = make(map[int64]*model.WarningRecord)
		}
		if st.Mutes == nil {
			st.Mutes = make(map[int64]*model.Mute)
		}
		if st.Removed == nil {
			st.Removed = make(map[int64]time.Time)
		}
		e.conversations[st.ConversationID] = &convEntry{state: st}
	}
}

// DirtyStates snapshots every conversation mutated since the previous call
// for the background flusher.
func (e *Engine) DirtyStates() []model.ConversationState {
	e.mu.Lock()
	entries := make([]*convEntry, 0, len(e.conversations))
	for _, entry := range e.conversations {
		entries = append(entries, entry)
	}
	e.mu.Unlock()

	var out []model.ConversationState
	for _, entry := range entries {
		entry.mu.Lock()
		if entry.dirty {
			out = append(out, cloneState(entry.state))
			entry.dirty = false
		}
		entry.mu.Unlock()
	}
	return out
}

func cloneState(state model.ConversationState) model.ConversationState {
	clone := state
	clone.Warnings = make(map[int64]*model.WarningRecord, len(state.Warnings))
	for id, rec := range state.Warnings {
		recCopy := *rec
		recCopy.Warnings = append([]model.Warning(nil), rec.Warnings...)
		clone.Warnings[id] = &recCopy
	}
	clone.Mutes = make(map[int64]*model.Mute, len(state.Mutes))
	for id, mute := range state.Mutes {
		muteCopy := *mute
		clone.Mutes[id] = &muteCopy
	}
	clone.Removed = make(map[int64]time.Time, len(state.Removed))
	for id, at := range state.Removed {
		clone.Removed[id] = at
	}
	clone.Rules.BannedWords = append([]string(nil), state.Rules.BannedWords...)
	return clone
}

func warningNotice(reason string, count, ceiling int) string {
	return fmt.Sprintf("⚠️ Warning (%d/%d)\n\nReason: %s\n\nBe careful!", count, ceiling, reason)
}

func isExcessiveCaps(content string, minLength int) bool {
	if len(content) <= minLength {
		return false
	}
	if content != strings.ToUpper(content) {
		return false
	}
	for _, r := range content {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasRepeatedRun(content string, runLength int) bool {
	var prev rune
	streak := 0
	for _, r := range content {
		if r == prev {
			streak++
			if streak >= runLength {
				return true
			}
			continue
		}
		prev = r
		streak = 1
	}
	return false
}

func containsBannedWord(content string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	lower := strings.ToLower(content)
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		idx := 0
		for {
			pos := strings.Index(lower[idx:], word)
			if pos < 0 {
				break
			}
			start := idx + pos
			end := start + len(word)
			if wholeWord(lower, start, end) {
				return true
			}
			idx = start + 1
		}
	}
	return false
}

func wholeWord(s string, start, end int) bool {
	if start > 0 && isWordChar(rune(s[start-1])) {
		return false
	}
	if end < len(s) && isWordChar(rune(s[end])) {
		return false
	}
	return true
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
