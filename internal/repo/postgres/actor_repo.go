package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

type ActorRepo struct {
	pool *pgxpool.Pool
}

func NewActorRepo(pool *pgxpool.Pool) *ActorRepo {
	return &ActorRepo{pool: pool}
}

func (r *ActorRepo) Upsert(ctx context.Context, actor model.Actor) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if actor.Key.ConversationID == 0 || actor.Key.UserID == 0 {
		return fmt.Errorf("invalid actor key")
	}

	history, err := json.Marshal(actor.RecentMessages)
	if err != nil {
		return fmt.Errorf("marshal actor history: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO actors (
	conversation_id,
	user_id,
	username,
	language,
	context,
	recent_messages,
	spam_score,
	message_count,
	first_seen_at,
	last_interaction
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (conversation_id, user_id) DO UPDATE SET
	username = EXCLUDED.username,
	language = EXCLUDED.language,
	context = EXCLUDED.context,
	recent_messages = EXCLUDED.recent_messages,
	spam_score = EXCLUDED.spam_score,
	message_count = EXCLUDED.message_count,
	last_interaction = EXCLUDED.last_interaction
`,
		actor.Key.ConversationID,
		actor.Key.UserID,
		actor.Username,
		string(actor.Language),
		actor.Context,
		history,
		actor.SpamScore,
		actor.MessageCount,
		actor.FirstSeenAt,
		actor.LastInteraction,
	); err != nil {
		return fmt.Errorf("upsert actor: %w", err)
	}

	return nil
}

func (r *ActorRepo) UpsertMany(ctx context.Context, actors []model.Actor) error {
	for _, actor := range actors {
		if err := r.Upsert(ctx, actor); err != nil {
			return err
		}
	}
	return nil
}
