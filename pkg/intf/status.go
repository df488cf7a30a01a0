package intf

// OperStatus is the operational status of an interface.
type OperStatus uint8

const (
	OperNull OperStatus = iota // status unknown or not applicable
	OperUp
	OperDown
)

func (s OperStatus) String() string {
	switch s {
	case OperUp:
		return "up"
	case OperDown:
		return "down"
	}
	return "unknown"
}

// ParseOperStatus maps a state store status string ("up"/"down") to an
// OperStatus. Anything else is OperNull.
func ParseOperStatus(s string) OperStatus {
	switch s {
	case "up":
		return OperUp
	case "down":
		return OperDown
	}
	return OperNull
}

// State is the per-interface state exposed by a StateSource.
type State struct {
	AdminEnabled bool
	Oper         OperStatus
	Description  string
	Speed        string
	MTU          string
}
