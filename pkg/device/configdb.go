package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// staticRouteTable is the CONFIG_DB table holding durable static routes.
// Keys are "<vrf>|<prefix>"; ECMP nexthops are comma-separated lists whose
// positions correlate across the nexthop/ifname/nexthop_group/mpls_label
// fields (an empty position means the field is unset for that path).
const staticRouteTable = "STATIC_ROUTE"

// portTable is the CONFIG_DB table holding per-port configuration.
const portTable = "PORT"

// StaticRouteEntry mirrors one CONFIG_DB STATIC_ROUTE hash.
type StaticRouteEntry struct {
	NextHop      string `json:"nexthop,omitempty"`
	Interface    string `json:"ifname,omitempty"`
	NexthopGroup string `json:"nexthop_group,omitempty"`
	MPLSLabel    string `json:"mpls_label,omitempty"`
	Distance     string `json:"distance,omitempty"`
	Tag          string `json:"tag,omitempty"`
	Metric       string `json:"metric,omitempty"`
}

// PortEntry mirrors one CONFIG_DB PORT hash (the fields this SDK touches).
type PortEntry struct {
	AdminStatus string `json:"admin_status,omitempty"`
	Description string `json:"description,omitempty"`
	MTU         string `json:"mtu,omitempty"`
	Speed       string `json:"speed,omitempty"`
}

// ConfigDBClient wraps a Redis client for CONFIG_DB access.
type ConfigDBClient struct {
	client *redis.Client
}

// NewConfigDBClient creates a CONFIG_DB client for the given Redis address.
func NewConfigDBClient(addr string) *ConfigDBClient {
	return &ConfigDBClient{client: newRedisClient(addr, dbConfig)}
}

// Connect tests the connection.
func (c *ConfigDBClient) Connect(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection.
func (c *ConfigDBClient) Close() error {
	return c.client.Close()
}

// StaticRoutes reads the whole STATIC_ROUTE table, keyed by "<vrf>|<prefix>".
func (c *ConfigDBClient) StaticRoutes(ctx context.Context) (map[string]StaticRouteEntry, error) {
	keys, err := scanKeys(ctx, c.client, staticRouteTable+"|*", 100)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", staticRouteTable, err)
	}

	entries := make(map[string]StaticRouteEntry, len(keys))
	for _, key := range keys {
		vals, err := c.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		name := strings.TrimPrefix(key, staticRouteTable+"|")
		entries[name] = StaticRouteEntry{
			NextHop:      vals["nexthop"],
			Interface:    vals["ifname"],
			NexthopGroup: vals["nexthop_group"],
			MPLSLabel:    vals["mpls_label"],
			Distance:     vals["distance"],
			Tag:          vals["tag"],
			Metric:       vals["metric"],
		}
	}
	return entries, nil
}

// ReplaceStaticRoutes replaces the STATIC_ROUTE table contents with the
// given entries: existing keys not present in entries are deleted, the
// rest are overwritten.
func (c *ConfigDBClient) ReplaceStaticRoutes(ctx context.Context, entries map[string]StaticRouteEntry) error {
	existing, err := scanKeys(ctx, c.client, staticRouteTable+"|*", 100)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", staticRouteTable, err)
	}
	for _, key := range existing {
		name := strings.TrimPrefix(key, staticRouteTable+"|")
		if _, ok := entries[name]; !ok {
			if err := c.client.Del(ctx, key).Err(); err != nil {
				return fmt.Errorf("deleting %s: %w", key, err)
			}
		}
	}
	for name, e := range entries {
		key := staticRouteTable + "|" + name
		if err := hsetEntry(ctx, c.client, key, e.fields()); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}
	return nil
}

func (e StaticRouteEntry) fields() map[string]string {
	fields := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	set("nexthop", e.NextHop)
	set("ifname", e.Interface)
	set("nexthop_group", e.NexthopGroup)
	set("mpls_label", e.MPLSLabel)
	set("distance", e.Distance)
	set("tag", e.Tag)
	set("metric", e.Metric)
	return fields
}

// Port reads one CONFIG_DB PORT entry. Returns ok=false if absent.
func (c *ConfigDBClient) Port(ctx context.Context, name string) (PortEntry, bool, error) {
	vals, err := c.client.HGetAll(ctx, portTable+"|"+name).Result()
	if err != nil {
		return PortEntry{}, false, fmt.Errorf("reading port %s: %w", name, err)
	}
	if len(vals) == 0 {
		return PortEntry{}, false, nil
	}
	return PortEntry{
		AdminStatus: vals["admin_status"],
		Description: vals["description"],
		MTU:         vals["mtu"],
		Speed:       vals["speed"],
	}, true, nil
}

// SetPortField writes one field of a CONFIG_DB PORT entry.
func (c *ConfigDBClient) SetPortField(ctx context.Context, name, field, value string) error {
	if err := c.client.HSet(ctx, portTable+"|"+name, field, value).Err(); err != nil {
		return fmt.Errorf("writing port %s %s: %w", name, field, err)
	}
	return nil
}
