package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// admitScript purges window entries older than the trailing window, then
// appends the new event only when the remaining count is below the ceiling.
// Running it as one script keeps purge+count+append atomic per key, so
// concurrent admits for the same actor cannot overshoot the ceiling.
const admitScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local ceiling = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, 0, now - window)
local count = redis.call("ZCARD", key)
if count >= ceiling then
	return 0
end
redis.call("ZADD", key, now, member)
redis.call("PEXPIRE", key, window)
return 1
`

type RateRepo struct {
	client *goredis.Client
	script *goredis.Script
}

func NewRateRepo(client *goredis.Client) *RateRepo {
	return &RateRepo{
		client: client,
		script: goredis.NewScript(admitScript),
	}
}

// AdmitWindow evaluates a sliding window for key: entries older than the
// window are dropped, and the event identified by member is appended only
// when the window still has room. A rejected event leaves the window
// untouched.
func (r *RateRepo) AdmitWindow(ctx context.Context, key string, now time.Time, window time.Duration, ceiling int, member string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if key == "" || window <= 0 || ceiling <= 0 || member == "" {
		return false, fmt.Errorf("invalid rate window payload")
	}

	res, err := r.script.Run(ctx, r.client, []string{key},
		now.UnixMilli(),
		window.Milliseconds(),
		ceiling,
		member,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("eval rate window script: %w", err)
	}

	return res == 1, nil
}
