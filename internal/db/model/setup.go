package model

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakequorum/consensus-oracle/internal/config"
)

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	ConsensusStateCollection: {
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
	},
	OracleConfigCollection: {},
	OperatorCollection: {
		{Keys: bson.D{{Key: "state", Value: 1}}},
	},
	PriceHistoryCollection: {
		{Keys: bson.D{{Key: "pool_id", Value: 1}, {Key: "timestamp", Value: -1}}, Unique: true},
	},
}

// Setup creates the collections and indexes the oracle needs. It is safe to
// run against an already initialized database.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)
	for name, indexes := range collections {
		createCollection(ctx, database, name)
		for _, idx := range indexes {
			createIndex(ctx, database, name, idx)
		}
	}

	return client.Disconnect(ctx)
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Debug().Err(err).Msgf("Collection %s might already exist", collectionName)
		return
	}
	log.Debug().Msgf("Collection %s created successfully", collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	indexModel := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}
	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Error().Err(err).Msgf("Failed to create index on collection %s", collectionName)
		return
	}
	log.Debug().Msgf("Index created successfully on collection %s", collectionName)
}
