package mirror

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "notifications"

// MongoMirror keeps a read-optimized copy of notifications in MongoDB, keyed by notification id.
type MongoMirror struct {
	collection *mongo.Collection
}

func NewMongoMirror(db *mongo.Database) *MongoMirror {
	return &MongoMirror{collection: db.Collection(mongoCollection)}
}

func (m *MongoMirror) Forward(ctx context.Context, n *models.Notification) error {
	rec := NewRecord(n)
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": rec.ID},
		rec,
		options.Replace().SetUpsert(true),
	)
	return err
}
