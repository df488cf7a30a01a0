package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// portStateTable is the STATE_DB table holding per-port operational state.
const portStateTable = "PORT_TABLE"

// PortStateEntry mirrors one STATE_DB PORT_TABLE hash.
type PortStateEntry struct {
	AdminStatus string `json:"admin_status,omitempty"`
	OperStatus  string `json:"oper_status,omitempty"`
	Description string `json:"description,omitempty"`
	Speed       string `json:"speed,omitempty"`
	MTU         string `json:"mtu,omitempty"`
}

// StateDBClient wraps a Redis client for STATE_DB access.
type StateDBClient struct {
	client *redis.Client
}

// NewStateDBClient creates a STATE_DB client for the given Redis address.
func NewStateDBClient(addr string) *StateDBClient {
	return &StateDBClient{client: newRedisClient(addr, dbState)}
}

// Connect tests the connection.
func (c *StateDBClient) Connect(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection.
func (c *StateDBClient) Close() error {
	return c.client.Close()
}

// PortNames lists the interfaces present in PORT_TABLE.
func (c *StateDBClient) PortNames(ctx context.Context) ([]string, error) {
	keys, err := scanKeys(ctx, c.client, portStateTable+"|*", 100)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", portStateTable, err)
	}
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		names = append(names, strings.TrimPrefix(key, portStateTable+"|"))
	}
	return names, nil
}

// Port reads one PORT_TABLE entry. Returns ok=false if absent.
func (c *StateDBClient) Port(ctx context.Context, name string) (PortStateEntry, bool, error) {
	vals, err := c.client.HGetAll(ctx, portStateTable+"|"+name).Result()
	if err != nil {
		return PortStateEntry{}, false, fmt.Errorf("reading %s state: %w", name, err)
	}
	if len(vals) == 0 {
		return PortStateEntry{}, false, nil
	}
	return PortStateEntry{
		AdminStatus: vals["admin_status"],
		OperStatus:  vals["oper_status"],
		Description: vals["description"],
		Speed:       vals["speed"],
		MTU:         vals["mtu"],
	}, true, nil
}
