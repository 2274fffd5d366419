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

func (db *Database) GetOperator(
	ctx context.Context, operatorID string,
) (*model.OperatorDocument, error) {
	filter := bson.M{"_id": operatorID}
	res := db.collection(model.OperatorCollection).FindOne(ctx, filter)

	var operatorDoc model.OperatorDocument
	err := res.Decode(&operatorDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     operatorID,
				Message: "operator not found",
			}
		}
		return nil, err
	}

	return &operatorDoc, nil
}

func (db *Database) UpsertOperator(
	ctx context.Context, operator *model.OperatorDocument,
) error {
	filter := bson.M{"_id": operator.OperatorID}
	update := bson.M{"$set": operator}

	_, err := db.collection(model.OperatorCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// UpdateOperatorReliability stores the already smoothed reliability score and
// bumps the operator's round counter. Unknown operators are created on the
// fly in the active state.
func (db *Database) UpdateOperatorReliability(
	ctx context.Context, operatorID string, reliability uint64, lastSeen int64,
) error {
	filter := bson.M{"_id": operatorID}
	update := bson.M{
		"$set": bson.M{
			"reliability": reliability,
			"last_seen":   lastSeen,
		},
		"$inc": bson.M{
			"rounds": 1,
		},
		"$setOnInsert": bson.M{
			"state": types.OperatorStateActive.String(),
		},
	}

	_, err := db.collection(model.OperatorCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
