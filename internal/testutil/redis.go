//go:build integration

// Package testutil provides helpers for integration tests that run against
// a real Redis instance standing in for a switch's databases.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
)

// RedisAddr returns the address of the test Redis, or skips the test when
// BRIGHTWIRE_TEST_REDIS is not set.
func RedisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("BRIGHTWIRE_TEST_REDIS")
	if addr == "" {
		t.Skip("BRIGHTWIRE_TEST_REDIS not set")
	}
	return addr
}

// FlushDB empties one database of the test Redis.
func FlushDB(t *testing.T, addr string, db int) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing test db %d: %v", db, err)
	}
}

// SeedHashes loads table entries into one database. Each entry becomes a
// hash at "<table>|<key>" with the given fields.
func SeedHashes(t *testing.T, addr string, db int, tables map[string]map[string]map[string]string) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()

	ctx := context.Background()
	for table, entries := range tables {
		for key, fields := range entries {
			args := make([]interface{}, 0, len(fields)*2)
			for k, v := range fields {
				args = append(args, k, v)
			}
			if err := client.HSet(ctx, table+"|"+key, args...).Err(); err != nil {
				t.Fatalf("seeding %s|%s: %v", table, key, err)
			}
		}
	}
}
