package model

const OracleConfigCollection = "oracle_config"

// OracleConfigDocument is the governance-controlled oracle configuration for
// one pool. MinStakeRequired is a decimal string in the stake token's 18
// decimal fixed-point representation.
type OracleConfigDocument struct {
	PoolID                string `bson:"_id"`
	Enabled               bool   `bson:"enabled"`
	ConsensusThresholdBps uint64 `bson:"consensus_threshold_bps"`
	MaxPriceDeviationBps  uint64 `bson:"max_price_deviation_bps"`
	MaxStalenessSeconds   int64  `bson:"max_staleness_seconds"`
	MinStakeRequired      string `bson:"min_stake_required"`
}
