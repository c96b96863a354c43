package tickets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ticketplan/internal/shared/constants"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SeatClaimer serializes concurrent purchases of one seat. A claim is held
// for the duration of a sale and released afterwards; it expires on its own
// if the holder dies.
type SeatClaimer interface {
	Claim(ctx context.Context, mapID string, x, y int) (release func(), err error)
}

// Lua script for atomic seat claim
const luaSeatClaim = `
-- KEYS[1] = claim key
-- ARGV[1] = owner token
-- ARGV[2] = ttl_ms

if redis.call("EXISTS", KEYS[1]) == 1 then
    return {0, redis.call("GET", KEYS[1])}
end

redis.call("SET", KEYS[1], ARGV[1], "PX", tonumber(ARGV[2]))
return {1, "claimed"}
`

// Lua script for releasing a claim only by its owner
const luaSeatRelease = `
-- KEYS[1] = claim key
-- ARGV[1] = owner token

if redis.call("GET", KEYS[1]) == ARGV[1] then
    redis.call("DEL", KEYS[1])
    return 1
end
return 0
`

// RedisSeatClaimer holds seat claims in Redis so that every API replica
// sees them.
type RedisSeatClaimer struct {
	redis *redis.Client
	ttl   time.Duration

	mu         sync.RWMutex
	claimSHA   string
	releaseSHA string
}

func NewRedisSeatClaimer(redisClient *redis.Client, ttl time.Duration) *RedisSeatClaimer {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisSeatClaimer{
		redis: redisClient,
		ttl:   ttl,
	}
}

// PreloadScripts loads Lua scripts into Redis so later calls go by SHA
func (c *RedisSeatClaimer) PreloadScripts(ctx context.Context) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	claimSHA, err := c.redis.ScriptLoad(ctx, luaSeatClaim).Result()
	if err != nil {
		return fmt.Errorf("failed to load seat claim script: %w", err)
	}
	releaseSHA, err := c.redis.ScriptLoad(ctx, luaSeatRelease).Result()
	if err != nil {
		return fmt.Errorf("failed to load seat release script: %w", err)
	}

	c.mu.Lock()
	c.claimSHA, c.releaseSHA = claimSHA, releaseSHA
	c.mu.Unlock()
	return nil
}

// eval runs a script by SHA when it was preloaded and falls back to the
// script body otherwise.
func (c *RedisSeatClaimer) eval(ctx context.Context, sha, script string, keys []string, args ...interface{}) (interface{}, error) {
	if sha != "" {
		result, err := c.redis.EvalSha(ctx, sha, keys, args...).Result()
		if err == nil || !strings.HasPrefix(err.Error(), "NOSCRIPT") {
			return result, err
		}
	}
	return c.redis.Eval(ctx, script, keys, args...).Result()
}

func (c *RedisSeatClaimer) Claim(ctx context.Context, mapID string, x, y int) (func(), error) {
	if c.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	key := constants.BuildSeatClaimKey(mapID, x, y)
	token := uuid.NewString()

	c.mu.RLock()
	claimSHA, releaseSHA := c.claimSHA, c.releaseSHA
	c.mu.RUnlock()

	result, err := c.eval(ctx, claimSHA, luaSeatClaim, []string{key}, token, c.ttl.Milliseconds())
	if err != nil {
		return nil, fmt.Errorf("failed to execute seat claim: %w", err)
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return nil, fmt.Errorf("unexpected result format from Lua script")
	}
	success, ok := resultArray[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 0 {
		return nil, ErrSeatClaimed
	}

	release := func() {
		// The request context may already be gone.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_, _ = c.eval(rctx, releaseSHA, luaSeatRelease, []string{key}, token)
	}
	return release, nil
}

// LocalSeatClaimer keeps claims in process memory for single-node setups.
type LocalSeatClaimer struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

func NewLocalSeatClaimer() *LocalSeatClaimer {
	return &LocalSeatClaimer{claims: make(map[string]struct{})}
}

func (c *LocalSeatClaimer) Claim(_ context.Context, mapID string, x, y int) (func(), error) {
	key := constants.BuildSeatClaimKey(mapID, x, y)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.claims[key]; held {
		return nil, ErrSeatClaimed
	}
	c.claims[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.claims, key)
			c.mu.Unlock()
		})
	}, nil
}
