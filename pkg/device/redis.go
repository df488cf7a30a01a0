// Package device provides access to a switch's internal state databases
// ("Sysdb") over Redis, and the transports needed to reach them. The
// databases follow the SONiC split: configuration in CONFIG_DB, runtime
// state in STATE_DB, counters in COUNTERS_DB.
package device

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Redis database numbers used by the switch.
const (
	dbCounters = 2 // COUNTERS_DB
	dbConfig   = 4 // CONFIG_DB
	dbState    = 6 // STATE_DB
)

func newRedisClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}

// scanKeys enumerates keys matching pattern with cursor-based SCAN, which
// does not block the server the way KEYS does.
func scanKeys(ctx context.Context, client *redis.Client, pattern string, countHint int64) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		batch, nextCursor, err := client.Scan(ctx, cursor, pattern, countHint).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// hsetEntry writes a field map as a Redis hash, replacing the previous
// contents of the key.
func hsetEntry(ctx context.Context, client *redis.Client, key string, fields map[string]string) error {
	pipe := client.TxPipeline()
	pipe.Del(ctx, key)
	if len(fields) > 0 {
		args := make([]interface{}, 0, len(fields)*2)
		for k, v := range fields {
			args = append(args, k, v)
		}
		pipe.HSet(ctx, key, args...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
