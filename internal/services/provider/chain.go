package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/enums"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
)

// Transport is one completion backend. The chain is agnostic to the wire
// protocol behind it.
type Transport interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Spec is one entry of the ordered fallback chain.
type Spec struct {
	ID        string
	Timeout   time.Duration
	Transport Transport
}

// Attempt is the per-provider telemetry record for a single request. It is
// logged and discarded, never persisted.
type Attempt struct {
	ProviderID string
	Outcome    Outcome
	Latency    time.Duration
}

var fallbackReplies = map[enums.Language]string{
	enums.LanguageBangla:  "Dukkito, ami ekhon reply dite parchi na. Ektu por abar try korun.",
	enums.LanguageHindi:   "Maaf kijiye, main abhi jawab nahi de pa raha hoon. Kripya thodi der baad fir koshish karein.",
	enums.LanguageEnglish: "Sorry, I'm having trouble responding right now. Please try again in a moment.",
}

// Chain tries providers strictly in configured order until one returns a
// non-empty completion. It never surfaces an error: when the whole chain is
// exhausted the caller gets a language-appropriate apology instead.
type Chain struct {
	specs  []Spec
	logger *zap.Logger
}

func NewChain(specs []Spec, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Chain{
		specs:  specs,
		logger: logger,
	}
}

// Complete runs the fallback chain with the prompt built once by the
// caller; the same prompt is reused for every attempt. Failures advance to
// the next provider with no delay — the user is waiting synchronously.
func (c *Chain) Complete(ctx context.Context, systemPrompt, userPrompt string, lang enums.Language) (string, []Attempt) {
	attempts := make([]Attempt, 0, len(c.specs))

	for _, spec := range c.specs {
		timeout := spec.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		text, err := spec.Transport.Invoke(attemptCtx, systemPrompt, userPrompt)
		cancel()

		latency := time.Since(start)
		text = strings.TrimSpace(text)

		switch {
		case err != nil && errors.Is(err, context.DeadlineExceeded):
			attempts = append(attempts, Attempt{ProviderID: spec.ID, Outcome: OutcomeTimeout, Latency: latency})
			c.logger.Warn("provider timed out", zap.String("provider", spec.ID), zap.Duration("latency", latency))
		case err != nil:
			attempts = append(attempts, Attempt{ProviderID: spec.ID, Outcome: OutcomeError, Latency: latency})
			c.logger.Warn("provider request failed", zap.String("provider", spec.ID), zap.Error(err))
		case text == "":
			attempts = append(attempts, Attempt{ProviderID: spec.ID, Outcome: OutcomeEmpty, Latency: latency})
			c.logger.Warn("provider returned empty completion", zap.String("provider", spec.ID))
		default:
			attempts = append(attempts, Attempt{ProviderID: spec.ID, Outcome: OutcomeSuccess, Latency: latency})
			c.logger.Info("completion generated",
				zap.String("provider", spec.ID),
				zap.Duration("latency", latency),
				zap.Int("attempts", len(attempts)))
			return text, attempts
		}
	}

	c.logger.Error("all providers failed", zap.Int("attempts", len(attempts)))
	return FallbackReply(lang), attempts
}

// FallbackReply is the canned apology for an exhausted chain.
func FallbackReply(lang enums.Language) string {
	if reply, ok := fallbackReplies[lang.OrDefault()]; ok {
		return reply
	}
	return fallbackReplies[enums.LanguageEnglish]
}
