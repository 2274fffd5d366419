package consumer

import (
	"context"

	"github.com/stakequorum/consensus-oracle/internal/queue"
)

type EventConsumer interface {
	Start() error
	PushConsensusReachedEvent(ctx context.Context, ev *queue.ConsensusReachedEvent) error
	PushSwapBlockedEvent(ctx context.Context, ev *queue.SwapBlockedEvent) error
	PushManipulationDetectedEvent(ctx context.Context, ev *queue.ManipulationDetectedEvent) error
	Stop() error
}
