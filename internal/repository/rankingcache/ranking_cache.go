// Package rankingcache keeps the points leaderboard in Redis sorted sets.
//
// Layout:
//   - sorted set "rankings:points" maps user id -> points
//   - hash "rankings:entries" maps user id -> RankingEntry JSON
//   - string "rankings:warm" marks a recent rebuild from the record store
package rankingcache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/code-arena/internal/domain"
)

const (
	keyPoints  = "rankings:points"
	keyEntries = "rankings:entries"
	keyWarm    = "rankings:warm"

	// DefaultTTL bounds how long a rebuilt board is trusted before the next rebuild.
	DefaultTTL = 10 * time.Minute
)

// Cache is a Redis-backed leaderboard.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps client. A non-positive ttl falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// mergeEntries defines merge(member, score, data) over KEYS[1] points and KEYS[2] entries.
// It never lowers a cached score that still has its hash entry.
const mergeEntries = `
local function merge(member, score, data)
  local cur = redis.call('ZSCORE', KEYS[1], member)
  if cur and tonumber(cur) > tonumber(score) and redis.call('HEXISTS', KEYS[2], member) == 1 then
    return 0
  end
  redis.call('ZADD', KEYS[1], score, member)
  redis.call('HSET', KEYS[2], member, data)
  return 1
end
`

var upsertScript = redis.NewScript(mergeEntries + `
return merge(ARGV[1], ARGV[2], ARGV[3])
`)

// KEYS: points, entries, warm. ARGV: ttl ms, warm stamp, then triples.
var replaceScript = redis.NewScript(mergeEntries + `
local written = 0
for i = 3, #ARGV, 3 do
  written = written + merge(ARGV[i], ARGV[i + 1], ARGV[i + 2])
end
if redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  redis.call('PEXPIRE', KEYS[2], ARGV[1])
end
redis.call('SET', KEYS[3], ARGV[2], 'PX', ARGV[1])
return written
`)

// Upsert writes a single entry unless the board already holds a higher score for the user.
func (c *Cache) Upsert(ctx context.Context, entry domain.RankingEntry) error {
	args, err := entryArgs(nil, entry)
	if err != nil {
		return err
	}
	return upsertScript.Run(ctx, c.client, []string{keyPoints, keyEntries}, args...).Err()
}

// Replace merges a snapshot read from the record store into the board and marks it warm.
// Scores only grow, so a snapshot older than a concurrent Upsert cannot lower that user.
func (c *Cache) Replace(ctx context.Context, entries []domain.RankingEntry) error {
	args := make([]any, 0, 2+len(entries)*3)
	args = append(args, c.ttl.Milliseconds(), time.Now().UTC().Format(time.RFC3339))
	for _, entry := range entries {
		var err error
		if args, err = entryArgs(args, entry); err != nil {
			return err
		}
	}
	return replaceScript.Run(ctx, c.client, []string{keyPoints, keyEntries, keyWarm}, args...).Err()
}

func entryArgs(args []any, entry domain.RankingEntry) ([]any, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal ranking entry: %w", err)
	}
	return append(args, entry.UserID, strconv.FormatInt(entry.Points, 10), string(data)), nil
}

// Top returns the best limit entries. warm is false when the board has not been rebuilt
// recently and callers should go to the record store instead.
func (c *Cache) Top(ctx context.Context, limit int) (entries []domain.RankingEntry, warm bool, err error) {
	exists, err := c.client.Exists(ctx, keyWarm).Result()
	if err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return nil, false, nil
	}
	ids, err := c.client.ZRevRange(ctx, keyPoints, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, false, err
	}
	if len(ids) == 0 {
		return []domain.RankingEntry{}, true, nil
	}
	raw, err := c.client.HMGet(ctx, keyEntries, ids...).Result()
	if err != nil {
		return nil, false, err
	}

	entries = make([]domain.RankingEntry, 0, len(raw))
	for i, value := range raw {
		s, ok := value.(string)
		if !ok {
			// hash and set drifted apart; let the caller rebuild
			return nil, false, fmt.Errorf("ranking entry %s missing", ids[i])
		}
		var entry domain.RankingEntry
		if err := json.Unmarshal([]byte(s), &entry); err != nil {
			return nil, false, fmt.Errorf("decode ranking entry %s: %w", ids[i], err)
		}
		entries = append(entries, entry)
	}
	return entries, true, nil
}
