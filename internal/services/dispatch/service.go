package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/services/intent"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/services/moderation"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/services/prompt"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/services/provider"
	"github.com/salman-dev-app/telegram-ai-assistant/internal/services/spam"
)

type ResultKind string

const (
	KindSuppressed ResultKind = "suppressed"
	KindReplied    ResultKind = "replied"
	KindModerated  ResultKind = "moderated"
)

type Result struct {
	Kind   ResultKind
	Text   string
	Action moderation.Action
	Reason string
}

// Event is one inbound message as delivered by the platform boundary.
type Event struct {
	ConversationID int64
	MessageID      int
	ActorID        int64
	Username       string
	Content        string
	SenderRole     enums.Role
	Timestamp      time.Time
}

type RateLimiter interface {
	Admit(ctx context.Context, key model.ActorKey) bool
}

type SpamDetector interface {
	Classify(key model.ActorKey, content string) spam.Verdict
}

type Moderator interface {
	Rules(conversationID int64) model.RuleSet
	Check(ctx context.Context, msg moderation.Message) moderation.Outcome
	RecordSpamBlocked(conversationID int64)
	Mute(conversationID, actorID int64, reason string, duration time.Duration) model.Mute
	Unmute(conversationID, actorID int64)
	ResetWarnings(conversationID, actorID int64)
}

type ActorRegistry interface {
	Observe(key model.ActorKey, username, content string)
	BumpSpamScore(key model.ActorKey) int64
	Language(key model.ActorKey) enums.Language
	SetLanguage(key model.ActorKey, lang enums.Language)
	Context(key model.ActorKey) string
	SetContext(key model.ActorKey, summary string)
}

type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, lang enums.Language) (string, []provider.Attempt)
}

// Platform is the subset of boundary actions the coordinator itself uses.
type Platform interface {
	SendReply(ctx context.Context, conversationID int64, replyTo int, text string) error
	DeleteMessage(ctx context.Context, conversationID int64, messageID int) error
	SendTyping(ctx context.Context, conversationID int64) error
}

type BrandSource interface {
	Profile() model.BrandProfile
}

type CatalogLookup interface {
	FormattedCatalog(ctx context.Context) (string, error)
}

type Config struct {
	AssistantName   string
	TypingDelayBase time.Duration
	TypingDelayCap  time.Duration
	MuteDefault     time.Duration
}

// Service is the dispatch coordinator: every inbound event runs the
// rate-limit, spam, moderation and intent stages in order, and only falls
// through to the provider chain when none of them short-circuits.
type Service struct {
	cfg       Config
	limiter   RateLimiter
	spam      SpamDetector
	moderator Moderator
	actors    ActorRegistry
	completer Completer
	platform  Platform
	brand     BrandSource
	catalog   CatalogLookup
	logger    *zap.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration)
}

func NewService(
	cfg Config,
	limiter RateLimiter,
	detector SpamDetector,
	moderator Moderator,
	registry ActorRegistry,
	completer Completer,
	platform Platform,
	brand BrandSource,
	catalog CatalogLookup,
	logger *zap.Logger,
) *Service {
	if cfg.TypingDelayBase <= 0 {
		cfg.TypingDelayBase = 800 * time.Millisecond
	}
	if cfg.TypingDelayCap <= 0 {
		cfg.TypingDelayCap = 3 * time.Second
	}
	if cfg.MuteDefault <= 0 {
		cfg.MuteDefault = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		limiter:   limiter,
		spam:      detector,
		moderator: moderator,
		actors:    registry,
		completer: completer,
		platform:  platform,
		brand:     brand,
		catalog:   catalog,
		logger:    logger,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

// Handle is the single entry point per inbound message. It never returns
// an error: every failure path degrades to silence or a canned reply.
func (s *Service) Handle(ctx context.Context, ev Event) Result {
	log := s.logger.With(
		zap.String("dispatch_id", uuid.NewString()),
		zap.Int64("conversation_id", ev.ConversationID),
		zap.Int64("actor_id", ev.ActorID),
	)

	brand := s.brand.Profile()
	if brand.Status == model.OwnerOnline {
		// The owner is present and speaks for himself.
		return Result{Kind: KindSuppressed, Reason: "owner online"}
	}

	key := model.ActorKey{ConversationID: ev.ConversationID, UserID: ev.ActorID}

	if !s.limiter.Admit(ctx, key) {
		log.Warn("rate limit exceeded, dropping message")
		return Result{Kind: KindSuppressed, Reason: "rate limited"}
	}

	// Record the message first so repeat detection sees the current one.
	s.actors.Observe(key, ev.Username, ev.Content)

	rules := s.moderator.Rules(ev.ConversationID)
	if rules.AntiSpam && s.spam.Classify(key, ev.Content) == spam.VerdictSpam {
		score := s.actors.BumpSpamScore(key)
		s.moderator.RecordSpamBlocked(ev.ConversationID)
		log.Warn("spam detected, suppressing", zap.Int64("spam_score", score))
		if err := s.platform.DeleteMessage(ctx, ev.ConversationID, ev.MessageID); err != nil {
			log.Warn("could not delete spam message", zap.Error(err))
		}
		return Result{Kind: KindSuppressed, Reason: "spam"}
	}

	outcome := s.moderator.Check(ctx, moderation.Message{
		ConversationID: ev.ConversationID,
		MessageID:      ev.MessageID,
		ActorID:        ev.ActorID,
		Role:           ev.SenderRole,
		Content:        ev.Content,
	})
	if outcome.Action != moderation.ActionNone {
		if outcome.Notice != "" {
			if err := s.platform.SendReply(ctx, ev.ConversationID, ev.MessageID, outcome.Notice); err != nil {
				log.Warn("could not send moderation notice", zap.Error(err))
			}
		}
		log.Info("moderation action taken",
			zap.String("action", string(outcome.Action)),
			zap.String("reason", outcome.Reason),
			zap.Int("warnings", outcome.WarningCount))
		return Result{Kind: KindModerated, Action: outcome.Action, Reason: outcome.Reason, Text: outcome.Notice}
	}

	routed := intent.Route(ev.Content)
	if routed.Kind != intent.KindNeedsCompletion {
		text := s.cannedReply(routed, brand)
		s.reply(ctx, log, ev, text)
		return Result{Kind: KindReplied, Text: text}
	}

	if !intent.Directed(ev.Content, s.cfg.AssistantName, brand.Keywords) {
		return Result{Kind: KindSuppressed, Reason: "not directed at assistant"}
	}

	lang := s.actors.Language(key).OrDefault()

	// Cosmetic human-likeness delay, proportional to the message length.
	if err := s.platform.SendTyping(ctx, ev.ConversationID); err != nil {
		log.Debug("could not send typing action", zap.Error(err))
	}
	s.sleep(ctx, s.typingDelay(len(ev.Content)))

	catalog, err := s.catalog.FormattedCatalog(ctx)
	if err != nil {
		log.Warn("catalog lookup failed, continuing without it", zap.Error(err))
		catalog = ""
	}

	systemPrompt := prompt.System(brand, lang)
	userPrompt := prompt.User(catalog, s.actors.Context(key), ev.Content)

	text, attempts := s.completer.Complete(ctx, systemPrompt, userPrompt, lang)
	log.Info("completion dispatched", zap.Int("attempts", len(attempts)))

	s.actors.SetContext(key, contextSummary(ev.Content, text))
	s.reply(ctx, log, ev, text)

	return Result{Kind: KindReplied, Text: text}
}

func (s *Service) cannedReply(routed intent.Intent, brand model.BrandProfile) string {
	switch routed.Kind {
	case intent.KindMusic:
		return intent.MusicReply(routed.Argument)
	case intent.KindWeather:
		return intent.WeatherReply(routed.Argument)
	case intent.KindImage:
		return intent.ImageReply(routed.Argument)
	case intent.KindJoke:
		return intent.RandomJoke()
	case intent.KindQuote:
		return intent.QuoteOfTheDay(s.now())
	case intent.KindContact:
		return intent.ContactCard(brand)
	default:
		return ""
	}
}

func (s *Service) reply(ctx context.Context, log *zap.Logger, ev Event, text string) {
	if text == "" {
		return
	}
	if err := s.platform.SendReply(ctx, ev.ConversationID, ev.MessageID, text); err != nil {
		log.Warn("could not send reply", zap.Error(err))
	}
}

func (s *Service) typingDelay(contentLen int) time.Duration {
	d := s.cfg.TypingDelayBase + time.Duration(contentLen)*25*time.Millisecond
	if d > s.cfg.TypingDelayCap {
		d = s.cfg.TypingDelayCap
	}
	return d
}

// Mute, Unmute and ResetWarnings are the administrative overrides exposed
// alongside Handle.
func (s *Service) Mute(conversationID, actorID int64, minutes int) model.Mute {
	duration := time.Duration(minutes) * time.Minute
	if minutes <= 0 {
		duration = s.cfg.MuteDefault
	}
	return s.moderator.Mute(conversationID, actorID, "administrative mute", duration)
}

func (s *Service) Unmute(conversationID, actorID int64) {
	s.moderator.Unmute(conversationID, actorID)
}

func (s *Service) ResetWarnings(conversationID, actorID int64) {
	s.moderator.ResetWarnings(conversationID, actorID)
}

// SetLanguage records an explicit language selection for the actor.
func (s *Service) SetLanguage(conversationID, actorID int64, lang enums.Language) {
	s.actors.SetLanguage(model.ActorKey{ConversationID: conversationID, UserID: actorID}, lang)
}

func contextSummary(message, reply string) string {
	return fmt.Sprintf("%s -> %s", truncate(message, 100), truncate(reply, 100))
}

// truncate counts runes, not bytes, so multibyte text is never cut
// mid-sequence.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
