package intf

import (
	"errors"
	"testing"

	"github.com/brightwire-networks/brightwire/pkg/util"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantType Type
	}{
		{name: "ethernet flat", in: "Ethernet0", wantType: TypeEthernet},
		{name: "ethernet slot/port", in: "Ethernet3/1", wantType: TypeEthernet},
		{name: "ethernet slot/port/sub", in: "Ethernet3/1/2", wantType: TypeEthernet},
		{name: "vlan", in: "Vlan100", wantType: TypeVlan},
		{name: "management", in: "Management1", wantType: TypeManagement},
		{name: "loopback", in: "Loopback0", wantType: TypeLoopback},
		{name: "port channel", in: "PortChannel100", wantType: TypePortChannel},
		{name: "null0", in: "Null0", wantType: TypeNull0},
		{name: "cpu", in: "CPU", wantType: TypeCPU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if !id.Valid() {
				t.Errorf("Parse(%q) returned invalid ID", tt.in)
			}
			if id.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", id.Type(), tt.wantType)
			}
			if id.String() != tt.in {
				t.Errorf("String() = %q, want %q", id.String(), tt.in)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []string{
		"",
		"eth0",
		"Ethernet",
		"Ethernet3/",
		"Ethernet3/1/2/4",
		"Ethernet03",   // non-canonical, would not round-trip
		"Ethernet99999",
		"Vlanx",
		"null0", // names are case sensitive
	}

	for _, in := range tests {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) should fail", in)
		} else if !errors.Is(err, util.ErrInvalidArgument) {
			t.Errorf("Parse(%q) error should unwrap to ErrInvalidArgument, got %v", in, err)
		}
	}
}

// Identity must be structural over the encoded ID: two IDs built from the
// same name via independent calls are one and the same value.
func TestIdentityIsStructural(t *testing.T) {
	a := MustParse("Ethernet3/1")
	b := MustParse("Ethernet3/1")
	if a != b {
		t.Errorf("IDs from the same name differ: %#x vs %#x", uint64(a), uint64(b))
	}

	c := MustParse("Ethernet3/2")
	if a == c {
		t.Error("IDs from different names compare equal")
	}
}

func TestOrderingIsNumeric(t *testing.T) {
	// Numeric component ordering, not string ordering: "Ethernet10/1"
	// sorts before "Ethernet3/1" as a string but after it as an ID.
	lo := MustParse("Ethernet3/1")
	hi := MustParse("Ethernet10/1")
	if !(lo < hi) {
		t.Errorf("Ethernet3/1 (%#x) should order before Ethernet10/1 (%#x)", uint64(lo), uint64(hi))
	}
}

func TestDefaultIDIsFalsy(t *testing.T) {
	var id ID
	if id.Valid() {
		t.Error("zero ID should be invalid")
	}
	if id.String() != "" {
		t.Errorf("zero ID String() = %q, want empty", id.String())
	}
	if id.IsNull0() {
		t.Error("zero ID is not Null0")
	}
}

func TestNull0(t *testing.T) {
	if !Null0.IsNull0() {
		t.Error("Null0.IsNull0() = false")
	}
	if Null0.String() != "Null0" {
		t.Errorf("Null0.String() = %q", Null0.String())
	}
	if MustParse("Null0") != Null0 {
		t.Error("Parse(Null0) != Null0 constant")
	}
	if MustParse("Ethernet0").IsNull0() {
		t.Error("Ethernet0 reported as Null0")
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse should panic on bad input")
		}
	}()
	MustParse("bogus")
}
