// Package intf defines interface identity and operational state for the
// brightwire SDK.
//
// Interfaces are identified by an opaque 64-bit ID derived from the
// canonical interface name (e.g. "Ethernet3/1"). Equality and ordering are
// defined over the encoded ID, never over the name string, so two IDs built
// independently from the same name always compare equal.
package intf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brightwire-networks/brightwire/pkg/util"
)

// Type classifies an interface by its name prefix.
type Type uint8

const (
	TypeNull Type = iota // zero ID only
	TypeOther
	TypeEthernet
	TypeVlan
	TypeManagement
	TypeLoopback
	TypePortChannel
	TypeNull0
	TypeCPU
)

var typeNames = map[Type]string{
	TypeEthernet:    "Ethernet",
	TypeVlan:        "Vlan",
	TypeManagement:  "Management",
	TypeLoopback:    "Loopback",
	TypePortChannel: "PortChannel",
	TypeNull0:       "Null0",
	TypeCPU:         "CPU",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	if t == TypeOther {
		return "Other"
	}
	return "None"
}

// ID uniquely identifies an interface of any type.
//
// Encoding: type in bits 56-63, number of positional components in bits
// 48-55, components (slot/port/subport) in three 16-bit fields below. The
// encoding is ordered: interfaces of the same type sort numerically by
// component ("Ethernet3/1" before "Ethernet10/1"), which string ordering
// would get wrong.
type ID uint64

// Null0 is the named null interface; routing traffic to it drops it.
const Null0 = ID(uint64(TypeNull0) << 56)

const maxComponent = 1<<16 - 1

// Parse builds an ID from a canonical interface name such as "Ethernet0",
// "Ethernet3/1", "Vlan100", "PortChannel100", "Management1", "Loopback0",
// "Null0" or "CPU".
func Parse(name string) (ID, error) {
	if name == "" {
		return 0, util.NewInvalidArgumentError("parse interface", "empty interface name")
	}
	switch name {
	case "Null0":
		return Null0, nil
	case "CPU":
		return ID(uint64(TypeCPU) << 56), nil
	}

	var typ Type
	var rest string
	for t, prefix := range typeNames {
		if t == TypeNull0 || t == TypeCPU {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			typ = t
			rest = name[len(prefix):]
			break
		}
	}
	if typ == TypeNull {
		return 0, util.NewInvalidArgumentError("parse interface", "unrecognized interface name '%s'", name)
	}

	parts := strings.Split(rest, "/")
	if len(parts) > 3 {
		return 0, util.NewInvalidArgumentError("parse interface", "too many components in '%s'", name)
	}
	id := uint64(typ)<<56 | uint64(len(parts))<<48
	shift := 32
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil || n > maxComponent || (len(p) > 1 && p[0] == '0') {
			return 0, util.NewInvalidArgumentError("parse interface", "bad component '%s' in '%s'", p, name)
		}
		id |= n << shift
		shift -= 16
	}
	return ID(id), nil
}

// MustParse is Parse for statically known names; it panics on bad input.
func MustParse(name string) ID {
	id, err := Parse(name)
	if err != nil {
		panic(fmt.Sprintf("intf.MustParse(%q): %v", name, err))
	}
	return id
}

// Valid reports whether the ID names an interface. Only the zero ID is
// invalid; it denotes "no interface".
func (id ID) Valid() bool {
	return id != 0
}

// Type returns the interface's type.
func (id ID) Type() Type {
	return Type(id >> 56)
}

// IsNull0 reports whether this is the named null interface.
func (id ID) IsNull0() bool {
	return id == Null0
}

// String returns the canonical interface name, e.g. "Ethernet3/1".
// The zero ID renders as "".
func (id ID) String() string {
	if id == 0 {
		return ""
	}
	typ := id.Type()
	switch typ {
	case TypeNull0, TypeCPU:
		return typ.String()
	}
	n := int(id >> 48 & 0xff)
	parts := make([]string, 0, 3)
	shift := 32
	for i := 0; i < n; i++ {
		parts = append(parts, strconv.FormatUint(uint64(id>>shift&0xffff), 10))
		shift -= 16
	}
	return typ.String() + strings.Join(parts, "/")
}
