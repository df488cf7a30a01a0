package intf

// Counters holds interface packet and octet counters. Field meanings follow
// the Interface MIB (RFC 2863): discarded-for-collision packets count as
// OutErrors, and octet counts include the MAC header and FCS.
type Counters struct {
	OutUcastPkts     uint64
	OutMulticastPkts uint64
	OutBroadcastPkts uint64
	InUcastPkts      uint64
	InMulticastPkts  uint64
	InBroadcastPkts  uint64
	OutOctets        uint64
	InOctets         uint64
	OutDiscards      uint64
	OutErrors        uint64
	InDiscards       uint64
	InErrors         uint64

	// SampleTime is when the counters were read, in seconds since the epoch.
	SampleTime float64
}

// TrafficRates holds smoothed interface throughput rates.
type TrafficRates struct {
	OutPktsRate float64 // packets per second
	InPktsRate  float64
	OutBitsRate float64 // bits per second
	InBitsRate  float64

	SampleTime float64
}
