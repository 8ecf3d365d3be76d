package spam

import (
	"strings"
	"time"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

type Verdict string

const (
	VerdictOK   Verdict = "ok"
	VerdictSpam Verdict = "spam"
)

const repeatWindow = time.Minute

// punctuationSet are the symbols counted toward a punctuation burst.
const punctuationSet = "!@#$%^&*"

type HistoryProvider interface {
	RecentMessages(key model.ActorKey) []model.RecentMessage
}

type Config struct {
	MinLength       int
	MaxLength       int
	RepeatThreshold int
	PunctuationRun  int
}

// Detector applies short-term flood heuristics over an actor's recent
// history. A spam verdict only suppresses the reply; it never feeds the
// moderation warning counter.
type Detector struct {
	history HistoryProvider
	cfg     Config
	now     func() time.Time
}

func NewDetector(history HistoryProvider, cfg Config) *Detector {
	if cfg.MinLength <= 0 {
		cfg.MinLength = 3
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = 4000
	}
	if cfg.RepeatThreshold <= 0 {
		cfg.RepeatThreshold = 3
	}
	if cfg.PunctuationRun <= 0 {
		cfg.PunctuationRun = 5
	}

	return &Detector{
		history: history,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Classify evaluates the heuristics in fixed precedence: length floor,
// length ceiling, identical-content repeats within the last minute, then
// punctuation bursts.
func (d *Detector) Classify(key model.ActorKey, content string) Verdict {
	trimmed := strings.TrimSpace(content)

	if len(trimmed) < d.cfg.MinLength {
		return VerdictSpam
	}
	if len(trimmed) > d.cfg.MaxLength {
		return VerdictSpam
	}

	if d.history != nil {
		cutoff := d.now().Add(-repeatWindow)
		identical := 0
		for _, msg := range d.history.RecentMessages(key) {
			if msg.Timestamp.Before(cutoff) {
				continue
			}
			if msg.Content == content {
				identical++
			}
		}
		// The message under classification is already part of history, so
		// the threshold counts it too.
		if identical >= d.cfg.RepeatThreshold {
			return VerdictSpam
		}
	}

	if hasPunctuationBurst(trimmed, d.cfg.PunctuationRun) {
		return VerdictSpam
	}

	return VerdictOK
}

func hasPunctuationBurst(content string, run int) bool {
	streak := 0
	for _, r := range content {
		if strings.ContainsRune(punctuationSet, r) {
			streak++
			if streak >= run {
				return true
			}
			continue
		}
		streak = 0
	}
	return false
}
