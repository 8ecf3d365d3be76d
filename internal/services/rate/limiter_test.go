package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/salman-dev-app/telegram-ai-assistant/internal/domain/model"
	redrepo "github.com/salman-dev-app/telegram-ai-assistant/internal/repo/redis"
)

func TestLimiterRejectsAboveCeilingWithinWindow(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 5, zap.NewNop())

	ctx := context.Background()
	key := model.ActorKey{ConversationID: -100, UserID: 42}

	for i := 0; i < 5; i++ {
		if !limiter.Admit(ctx, key) {
			t.Fatalf("admit #%d should pass below ceiling", i+1)
		}
	}

	if limiter.Admit(ctx, key) {
		t.Fatalf("sixth admit within the window should be rejected")
	}

	// A different actor in the same conversation is unaffected.
	other := model.ActorKey{ConversationID: -100, UserID: 43}
	if !limiter.Admit(ctx, other) {
		t.Fatalf("unrelated actor should not share the window")
	}
}

func TestLimiterReadmitsAfterWindowExpiry(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 2, zap.NewNop())

	base := time.Now()
	limiter.now = func() time.Time { return base }

	ctx := context.Background()
	key := model.ActorKey{ConversationID: -7, UserID: 1}

	if !limiter.Admit(ctx, key) || !limiter.Admit(ctx, key) {
		t.Fatalf("first two admits should pass")
	}
	if limiter.Admit(ctx, key) {
		t.Fatalf("third admit within the window should be rejected")
	}

	// The rejected event must not count toward future windows: after the
	// original entries fall out, two fresh admits pass again.
	limiter.now = func() time.Time { return base.Add(61 * time.Second) }
	if !limiter.Admit(ctx, key) || !limiter.Admit(ctx, key) {
		t.Fatalf("admits after window expiry should pass")
	}
}

func TestLimiterFailsOpenWhenStoreUnavailable(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 1, zap.NewNop())

	key := model.ActorKey{ConversationID: -1, UserID: 2}
	for i := 0; i < 3; i++ {
		if !limiter.Admit(context.Background(), key) {
			t.Fatalf("limiter must fail open when redis is down")
		}
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}
