package consensus

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of the hard-failure taxonomy: a caller violated
// a precondition it controls. Expected zero states (no stake, no weight, zero
// price) are never errors; they short-circuit to explicit zero results.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrNoAttestations  = fmt.Errorf("%w: no attestations", ErrInvalidInput)
	ErrThresholdTooLow = fmt.Errorf("%w: consensus threshold below %d bps", ErrInvalidInput, MinConsensusThresholdBps)
	ErrSeriesTooShort  = fmt.Errorf("%w: price series needs at least %d points", ErrInvalidInput, minSeriesPoints)
	ErrLengthMismatch  = fmt.Errorf("%w: input series lengths differ", ErrInvalidInput)
	ErrNoSources       = fmt.Errorf("%w: no price sources", ErrInvalidInput)
)
