package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stakequorum/consensus-oracle/internal/db/model"
)

func (db *Database) InsertPricePoint(
	ctx context.Context, point *model.PriceHistoryDocument,
) error {
	_, err := db.collection(model.PriceHistoryCollection).InsertOne(ctx, point)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     point.PoolID,
						Message: "price point already recorded",
					}
				}
			}
		}
		return err
	}
	return nil
}

// GetPriceHistory returns the newest limit points for a pool in chronological
// order, oldest first.
func (db *Database) GetPriceHistory(
	ctx context.Context, poolID string, limit int64,
) ([]model.PriceHistoryDocument, error) {
	filter := bson.M{"pool_id": poolID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := db.collection(model.PriceHistoryCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var points []model.PriceHistoryDocument
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}

	// The query sorts newest first to honor the limit; callers want the
	// series oldest first.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}

// PrunePriceHistory drops every point older than the keep newest ones for a
// pool. Pools with fewer points than the window are left untouched.
func (db *Database) PrunePriceHistory(
	ctx context.Context, poolID string, keep uint64,
) error {
	if keep == 0 {
		return nil
	}

	opts := options.FindOne().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(keep - 1))
	res := db.collection(model.PriceHistoryCollection).
		FindOne(ctx, bson.M{"pool_id": poolID}, opts)

	var oldestKept model.PriceHistoryDocument
	if err := res.Decode(&oldestKept); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}

	_, err := db.collection(model.PriceHistoryCollection).DeleteMany(ctx, bson.M{
		"pool_id":   poolID,
		"timestamp": bson.M{"$lt": oldestKept.Timestamp},
	})
	return err
}
