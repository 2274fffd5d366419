package types

// Enum values for Consensus Status
type ConsensusStatus string

const (
	StatusNoConsensus      ConsensusStatus = "NO_CONSENSUS"
	StatusConsensusReached ConsensusStatus = "CONSENSUS_REACHED"
	StatusStale            ConsensusStatus = "STALE"
)

func (s ConsensusStatus) String() string {
	return string(s)
}

// StatusForRound maps a round outcome to the stored status. A fresh round
// always overwrites a STALE snapshot.
func StatusForRound(hasConsensus bool) ConsensusStatus {
	if hasConsensus {
		return StatusConsensusReached
	}
	return StatusNoConsensus
}

// QualifiedStatesForStale returns the qualified current states for the stale
// sweep. Only a reached consensus expires; NO_CONSENSUS already tells
// dependents not to trust the snapshot.
func QualifiedStatesForStale() []ConsensusStatus {
	return []ConsensusStatus{StatusConsensusReached}
}
