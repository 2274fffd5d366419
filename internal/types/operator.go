package types

import "fmt"

type OperatorState string

const (
	OperatorStateActive    OperatorState = "active"
	OperatorStateInactive  OperatorState = "inactive"
	OperatorStateSuspended OperatorState = "suspended"
)

func (s OperatorState) String() string {
	return string(s)
}

func OperatorStateFromString(s string) (OperatorState, error) {
	switch s {
	case "active":
		return OperatorStateActive, nil
	case "inactive":
		return OperatorStateInactive, nil
	case "suspended":
		return OperatorStateSuspended, nil
	default:
		return "", fmt.Errorf("invalid operator state: %s", s)
	}
}
