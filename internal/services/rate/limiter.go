package rate

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

const messageWindow = time.Minute

type WindowStore interface {
	AdmitWindow(ctx context.Context, key string, now time.Time, window time.Duration, ceiling int, member string) (bool, error)
}

// Limiter gates every inbound message through a per-actor sliding window.
type Limiter struct {
	store   WindowStore
	ceiling int
	logger  *zap.Logger
	now     func() time.Time
}

func NewLimiter(store WindowStore, ceilingPerMinute int, logger *zap.Logger) *Limiter {
	if ceilingPerMinute <= 0 {
		ceilingPerMinute = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Limiter{
		store:   store,
		ceiling: ceilingPerMinute,
		logger:  logger,
		now:     time.Now,
	}
}

// Admit reports whether the actor's message may proceed. When the backing
// store is unavailable the limiter fails open.
func (l *Limiter) Admit(ctx context.Context, key model.ActorKey) bool {
	if l.store == nil {
		return true
	}

	admitted, err := l.store.AdmitWindow(ctx, windowKey(key), l.now(), messageWindow, l.ceiling, uuid.NewString())
	if err != nil {
		l.logger.Warn("rate window store unavailable, admitting",
			zap.Int64("conversation_id", key.ConversationID),
			zap.Int64("user_id", key.UserID),
			zap.Error(err))
		return true
	}

	return admitted
}

func windowKey(key model.ActorKey) string {
	return "rate:msgs:" + strconv.FormatInt(key.ConversationID, 10) + ":" + strconv.FormatInt(key.UserID, 10)
}
