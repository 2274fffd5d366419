package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
	"github.com/stakequorum/consensus-oracle/internal/types"
)

func (db *Database) UpsertConsensusState(
	ctx context.Context, state *model.ConsensusStateDocument,
) error {
	filter := bson.M{"_id": state.PoolID}
	update := bson.M{"$set": state}

	_, err := db.collection(model.ConsensusStateCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (db *Database) GetConsensusState(
	ctx context.Context, poolID string,
) (*model.ConsensusStateDocument, error) {
	filter := bson.M{"_id": poolID}
	res := db.collection(model.ConsensusStateCollection).FindOne(ctx, filter)

	var stateDoc model.ConsensusStateDocument
	err := res.Decode(&stateDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     poolID,
				Message: "consensus state not found for pool",
			}
		}
		return nil, err
	}

	return &stateDoc, nil
}

// UpdateConsensusStatus transitions a pool's snapshot status only when the
// stored status is still one of the qualified previous statuses, so a
// concurrent round cannot be overwritten by a lagging sweep.
func (db *Database) UpdateConsensusStatus(
	ctx context.Context,
	poolID string,
	qualifiedPreviousStatuses []types.ConsensusStatus,
	newStatus types.ConsensusStatus,
) error {
	qualifiedStatusStrs := make([]string, len(qualifiedPreviousStatuses))
	for i, status := range qualifiedPreviousStatuses {
		qualifiedStatusStrs[i] = status.String()
	}

	filter := bson.M{
		"_id":    poolID,
		"status": bson.M{"$in": qualifiedStatusStrs},
	}
	update := bson.M{
		"$set": bson.M{
			"status": newStatus.String(),
		},
	}

	res := db.collection(model.ConsensusStateCollection).
		FindOneAndUpdate(ctx, filter, update)

	if res.Err() != nil {
		if errors.Is(res.Err(), mongo.ErrNoDocuments) {
			return &NotFoundError{
				Key:     poolID,
				Message: "consensus state not found or current status is not qualified",
			}
		}
		return res.Err()
	}

	return nil
}

// FindExpiredConsensusStates returns up to limit snapshots that still claim
// consensus but whose expiry timestamp has passed.
func (db *Database) FindExpiredConsensusStates(
	ctx context.Context, now int64, limit uint64,
) ([]model.ConsensusStateDocument, error) {
	filter := bson.M{
		"status":     types.StatusConsensusReached.String(),
		"expires_at": bson.M{"$lte": now},
	}
	opts := options.Find().SetLimit(int64(limit))

	cursor, err := db.collection(model.ConsensusStateCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []model.ConsensusStateDocument
	if err := cursor.All(ctx, &states); err != nil {
		return nil, err
	}

	return states, nil
}
