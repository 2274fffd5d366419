package state

import "github.com/stakequorum/consensus-oracle/internal/types"

// operatorStateChangeMap maps the current state of an operator to the states
// it can transition to. Suspension is reversible; an operator can only be
// suspended while it is actively attesting.
var operatorStateChangeMap = map[string][]string{
	types.OperatorStateActive.String(): {
		types.OperatorStateInactive.String(),
		types.OperatorStateSuspended.String(),
	},
	types.OperatorStateInactive.String(): {
		types.OperatorStateActive.String(),
	},
	types.OperatorStateSuspended.String(): {
		types.OperatorStateActive.String(),
		types.OperatorStateInactive.String(),
	},
}

func IsQualifiedStateForOperatorStateChange(
	currentState string, newState string,
) bool {
	qualifiedStates, ok := operatorStateChangeMap[currentState]
	if !ok {
		return false
	}
	for _, state := range qualifiedStates {
		if state == newState {
			return true
		}
	}
	return false
}
