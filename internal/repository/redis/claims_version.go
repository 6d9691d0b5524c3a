package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	red "github.com/redis/go-redis/v9"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/domain"
	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/core/port"
)

const defaultClaimsVersionPrefix = "shop:claims_version"

// ClaimsVersionCache keeps monotonically increasing counters that principals
// are stamped with. Missing keys read as zero.
type ClaimsVersionCache struct {
	client *red.Client
	prefix string
}

// NewClaimsVersionCache constructs the cache helper.
func NewClaimsVersionCache(client *red.Client, keyPrefix string) *ClaimsVersionCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultClaimsVersionPrefix
	}
	return &ClaimsVersionCache{client: client, prefix: prefix}
}

// Current reads the global and per-user counters in one round trip.
func (c *ClaimsVersionCache) Current(ctx context.Context, userID string) (domain.ClaimsStamp, error) {
	userKey := c.userKey(userID)
	if userKey == "" {
		return domain.ClaimsStamp{}, fmt.Errorf("user id is required")
	}

	values, err := c.client.MGet(ctx, c.globalKey(), userKey).Result()
	if err != nil && !errors.Is(err, red.Nil) {
		return domain.ClaimsStamp{}, fmt.Errorf("redis mget claims versions: %w", err)
	}

	var stamp domain.ClaimsStamp
	if len(values) == 2 {
		if stamp.Global, err = parseCounter(values[0]); err != nil {
			return domain.ClaimsStamp{}, fmt.Errorf("parse global claims version: %w", err)
		}
		if stamp.User, err = parseCounter(values[1]); err != nil {
			return domain.ClaimsStamp{}, fmt.Errorf("parse user claims version: %w", err)
		}
	}
	return stamp, nil
}

// BumpGlobal invalidates every principal issued before the call.
func (c *ClaimsVersionCache) BumpGlobal(ctx context.Context) (int64, error) {
	version, err := c.client.Incr(ctx, c.globalKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr global claims version: %w", err)
	}
	return version, nil
}

// BumpUser invalidates the user's principals issued before the call.
func (c *ClaimsVersionCache) BumpUser(ctx context.Context, userID string) (int64, error) {
	key := c.userKey(userID)
	if key == "" {
		return 0, fmt.Errorf("user id is required")
	}

	version, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr user claims version: %w", err)
	}
	return version, nil
}

func (c *ClaimsVersionCache) globalKey() string {
	return c.prefix + ":global"
}

func (c *ClaimsVersionCache) userKey(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ""
	}
	return fmt.Sprintf("%s:user:%s", c.prefix, userID)
}

func parseCounter(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected counter type %T", value)
	}
}

var _ port.ClaimsVersionCache = (*ClaimsVersionCache)(nil)
