package device

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/brightwire-networks/brightwire/pkg/intf"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

// COUNTERS_DB layout: COUNTERS_PORT_NAME_MAP maps interface names to SAI
// object ids; COUNTERS:<oid> holds the SAI stat fields; RATES:<oid> holds
// the smoothed rates computed on the device.
const (
	portNameMapKey = "COUNTERS_PORT_NAME_MAP"
	countersPrefix = "COUNTERS:"
	ratesPrefix    = "RATES:"
)

// CountersDBClient wraps a Redis client for COUNTERS_DB access.
type CountersDBClient struct {
	client *redis.Client
}

// NewCountersDBClient creates a COUNTERS_DB client for the given Redis address.
func NewCountersDBClient(addr string) *CountersDBClient {
	return &CountersDBClient{client: newRedisClient(addr, dbCounters)}
}

// Connect tests the connection.
func (c *CountersDBClient) Connect(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection.
func (c *CountersDBClient) Close() error {
	return c.client.Close()
}

func (c *CountersDBClient) portOID(ctx context.Context, name string) (string, error) {
	oid, err := c.client.HGet(ctx, portNameMapKey, name).Result()
	if err == redis.Nil {
		return "", util.NewNotFoundError("interface counters", name)
	}
	if err != nil {
		return "", fmt.Errorf("resolving counter oid for %s: %w", name, err)
	}
	return oid, nil
}

// PortCounters reads the SAI counters for one interface. SampleTime is the
// read time; the counter store does not record an update timestamp.
func (c *CountersDBClient) PortCounters(ctx context.Context, name string) (intf.Counters, error) {
	oid, err := c.portOID(ctx, name)
	if err != nil {
		return intf.Counters{}, err
	}
	vals, err := c.client.HGetAll(ctx, countersPrefix+oid).Result()
	if err != nil {
		return intf.Counters{}, fmt.Errorf("reading counters for %s: %w", name, err)
	}

	stat := func(field string) uint64 {
		n, _ := strconv.ParseUint(vals[field], 10, 64)
		return n
	}
	return intf.Counters{
		OutUcastPkts:     stat("SAI_PORT_STAT_IF_OUT_UCAST_PKTS"),
		OutMulticastPkts: stat("SAI_PORT_STAT_IF_OUT_MULTICAST_PKTS"),
		OutBroadcastPkts: stat("SAI_PORT_STAT_IF_OUT_BROADCAST_PKTS"),
		InUcastPkts:      stat("SAI_PORT_STAT_IF_IN_UCAST_PKTS"),
		InMulticastPkts:  stat("SAI_PORT_STAT_IF_IN_MULTICAST_PKTS"),
		InBroadcastPkts:  stat("SAI_PORT_STAT_IF_IN_BROADCAST_PKTS"),
		OutOctets:        stat("SAI_PORT_STAT_IF_OUT_OCTETS"),
		InOctets:         stat("SAI_PORT_STAT_IF_IN_OCTETS"),
		OutDiscards:      stat("SAI_PORT_STAT_IF_OUT_DISCARDS"),
		OutErrors:        stat("SAI_PORT_STAT_IF_OUT_ERRORS"),
		InDiscards:       stat("SAI_PORT_STAT_IF_IN_DISCARDS"),
		InErrors:         stat("SAI_PORT_STAT_IF_IN_ERRORS"),
		SampleTime:       float64(time.Now().UnixNano()) / 1e9,
	}, nil
}

// PortRates reads the smoothed traffic rates for one interface.
func (c *CountersDBClient) PortRates(ctx context.Context, name string) (intf.TrafficRates, error) {
	oid, err := c.portOID(ctx, name)
	if err != nil {
		return intf.TrafficRates{}, err
	}
	vals, err := c.client.HGetAll(ctx, ratesPrefix+oid).Result()
	if err != nil {
		return intf.TrafficRates{}, fmt.Errorf("reading rates for %s: %w", name, err)
	}

	rate := func(field string) float64 {
		f, _ := strconv.ParseFloat(vals[field], 64)
		return f
	}
	return intf.TrafficRates{
		OutPktsRate: rate("TX_PPS"),
		InPktsRate:  rate("RX_PPS"),
		OutBitsRate: rate("TX_BPS") * 8,
		InBitsRate:  rate("RX_BPS") * 8,
		SampleTime:  float64(time.Now().UnixNano()) / 1e9,
	}, nil
}
