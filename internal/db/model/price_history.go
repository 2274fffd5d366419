package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PriceHistoryCollection = "price_history"

// PriceHistoryDocument is one consensus price point in a pool's retained
// series, consumed by the manipulation scan.
type PriceHistoryDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	PoolID    string             `bson:"pool_id"`
	Price     string             `bson:"price"`
	Timestamp int64              `bson:"timestamp"`
}

func NewPriceHistoryDocument(poolID, price string, timestamp int64) *PriceHistoryDocument {
	return &PriceHistoryDocument{
		ID:        primitive.NewObjectID(),
		PoolID:    poolID,
		Price:     price,
		Timestamp: timestamp,
	}
}
