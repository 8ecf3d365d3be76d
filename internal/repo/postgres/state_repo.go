package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
)

// StateRepo persists conversation moderation state. The nested maps
// (warnings, mutes, removals) go into one jsonb payload; the id and title
// stay as columns for lookups.
type StateRepo struct {
	pool *pgxpool.Pool
}

func NewStateRepo(pool *pgxpool.Pool) *StateRepo {
	return &StateRepo{pool: pool}
}

func (r *StateRepo) Upsert(ctx context.Context, state model.ConversationState) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if state.ConversationID == 0 {
		return fmt.Errorf("invalid conversation id")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO conversation_states (
	conversation_id,
	title,
	payload,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (conversation_id) DO UPDATE SET
	title = EXCLUDED.title,
	payload = EXCLUDED.payload,
	updated_at = NOW()
`, state.ConversationID, state.Title, payload); err != nil {
		return fmt.Errorf("upsert conversation state: %w", err)
	}

	return nil
}

func (r *StateRepo) UpsertMany(ctx context.Context, states []model.ConversationState) error {
	for _, state := range states {
		if err := r.Upsert(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// LoadAll returns every persisted conversation state. Called once at
// startup to re-seed the in-memory engine.
func (r *StateRepo) LoadAll(ctx context.Context) ([]model.ConversationState, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT payload
FROM conversation_states
ORDER BY conversation_id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("load conversation states: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationState
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan conversation state: %w", err)
		}

		var state model.ConversationState
		if err := json.Unmarshal(payload, &state); err != nil {
			return nil, fmt.Errorf("unmarshal conversation state: %w", err)
		}
		out = append(out, state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation states: %w", err)
	}

	return out, nil
}
