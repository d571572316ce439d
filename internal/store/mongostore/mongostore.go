// Package mongostore implements store.Store on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JonMunkholm/proset/internal/store"
)

// Store is a store.Store backed by one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and ensures the unique indexes
// exist in database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.Info("mongo store ready", "database", database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	for _, idx := range store.UniqueIndexes {
		keys := bson.D{}
		for _, f := range idx.Fields {
			keys = append(keys, bson.E{Key: f, Value: 1})
		}
		_, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true).SetName(idx.Name),
		})
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

func toBSON(f store.Filter) bson.M {
	if f == nil {
		return bson.M{}
	}
	return bson.M(f)
}

func wrap(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: %v", op, store.ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// FindOne implements store.Store.
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) (bool, error) {
	err := s.db.Collection(collection).FindOne(ctx, toBSON(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, wrap("find one", err)
	}
	return true, nil
}

// FindMany implements store.Store.
func (s *Store) FindMany(ctx context.Context, collection string, filter store.Filter, out any) error {
	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter))
	if err != nil {
		return wrap("find", err)
	}
	if err := cur.All(ctx, out); err != nil {
		return wrap("decode", err)
	}
	return nil
}

// Upsert implements store.Store.
func (s *Store) Upsert(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (store.UpsertResult, error) {
	return s.update(ctx, "upsert", collection, filter, patch, true)
}

// Update implements store.Store.
func (s *Store) Update(ctx context.Context, collection string, filter store.Filter, patch store.Patch) (store.UpsertResult, error) {
	return s.update(ctx, "update", collection, filter, patch, false)
}

func (s *Store) update(ctx context.Context, op, collection string, filter store.Filter, patch store.Patch, upsert bool) (store.UpsertResult, error) {
	res, err := s.db.Collection(collection).UpdateOne(ctx,
		toBSON(filter),
		bson.M{"$set": bson.M(patch)},
		options.Update().SetUpsert(upsert),
	)
	if err != nil {
		return store.UpsertResult{}, wrap(op, err)
	}

	out := store.UpsertResult{
		Matched:  res.MatchedCount > 0,
		Modified: res.ModifiedCount > 0,
	}
	if res.UpsertedID != nil {
		out.CreatedID = idString(res.UpsertedID)
	}
	return out, nil
}

// DeleteOne implements store.Store.
func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (store.DeleteResult, error) {
	res, err := s.db.Collection(collection).DeleteOne(ctx, toBSON(filter))
	if err != nil {
		return store.DeleteResult{}, wrap("delete", err)
	}
	return store.DeleteResult{DeletedCount: res.DeletedCount}, nil
}

// InsertOne implements store.Store.
func (s *Store) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", wrap("insert", err)
	}
	return idString(res.InsertedID), nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func idString(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
