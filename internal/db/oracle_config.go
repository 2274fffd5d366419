package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
)

func (db *Database) UpsertOracleConfig(
	ctx context.Context, cfg *model.OracleConfigDocument,
) error {
	filter := bson.M{"_id": cfg.PoolID}
	update := bson.M{"$set": cfg}

	_, err := db.collection(model.OracleConfigCollection).
		UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (db *Database) GetOracleConfig(
	ctx context.Context, poolID string,
) (*model.OracleConfigDocument, error) {
	filter := bson.M{"_id": poolID}
	res := db.collection(model.OracleConfigCollection).FindOne(ctx, filter)

	var cfgDoc model.OracleConfigDocument
	err := res.Decode(&cfgDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     poolID,
				Message: "oracle config not found for pool",
			}
		}
		return nil, err
	}

	return &cfgDoc, nil
}

func (db *Database) ListOracleConfigs(ctx context.Context) ([]*model.OracleConfigDocument, error) {
	cursor, err := db.collection(model.OracleConfigCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []*model.OracleConfigDocument
	if err := cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}
