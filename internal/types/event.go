package types

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

// Oracle events published to downstream consumers.
const (
	EventConsensusReached     EventTypes = "oracle.v1.EventConsensusReached"
	EventSwapBlocked          EventTypes = "oracle.v1.EventSwapBlocked"
	EventManipulationDetected EventTypes = "oracle.v1.EventManipulationDetected"
)
