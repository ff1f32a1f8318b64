package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"direct_messenger/pkg/logger"
)

// MongoStore passes queries through to a MongoDB database. Filters and
// partial updates translate one-to-one into bson documents, so the operator
// set of the Filter type ($ne, $all) is exactly what the server evaluates.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    logger.Logger
}

func NewMongoStore(ctx context.Context, uri, database string, log logger.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(database),
		log:    log,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	return s.FindOne(ctx, collection, Filter{"id": id})
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter Filter) (Doc, error) {
	var doc Doc
	err := s.db.Collection(collection).FindOne(ctx, toBson(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDocument
		}
		s.log.Error("Failed to find document", "collection", collection, "error", err)
		return nil, err
	}
	delete(doc, "_id")
	return normalizeDoc(doc), nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]Doc, error) {
	findOpts := options.Find()
	if opts != nil {
		if opts.SortField != "" {
			order := -1
			if opts.SortAsc {
				order = 1
			}
			findOpts.SetSort(bson.D{{Key: opts.SortField, Value: order}})
		}
		if opts.Limit > 0 {
			findOpts.SetLimit(opts.Limit)
		}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, toBson(filter), findOpts)
	if err != nil {
		s.log.Error("Failed to query collection", "collection", collection, "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Doc
	if err := cursor.All(ctx, &docs); err != nil {
		s.log.Error("Failed to decode documents", "collection", collection, "error", err)
		return nil, err
	}
	for i, doc := range docs {
		delete(doc, "_id")
		docs[i] = normalizeDoc(doc)
	}
	return docs, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc Doc) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc)); err != nil {
		s.log.Error("Failed to insert document", "collection", collection, "error", err)
		return err
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, set Doc) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M(set)},
	)
	if err != nil {
		s.log.Error("Failed to update document", "collection", collection, "id", id, "error", err)
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *MongoStore) UpdateMany(ctx context.Context, collection string, filter Filter, set Doc) (int64, error) {
	result, err := s.db.Collection(collection).UpdateMany(ctx,
		toBson(filter),
		bson.M{"$set": bson.M(set)},
	)
	if err != nil {
		s.log.Error("Failed to update documents", "collection", collection, "error", err)
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (s *MongoStore) Increment(ctx context.Context, collection, id, field string, delta int) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		s.log.Error("Failed to increment field", "collection", collection, "id", id, "field", field, "error", err)
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// normalizeDoc rewrites bson container types (bson.M, bson.A) into the plain
// map/slice shapes the Doc contract promises to callers.
func normalizeDoc(doc Doc) Doc {
	for k, v := range doc {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case bson.M:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = normalizeValue(item)
		}
		return out
	case map[string]any:
		for k, item := range value {
			value[k] = normalizeValue(item)
		}
		return value
	case bson.A:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalizeValue(item)
		}
		return out
	case []any:
		for i, item := range value {
			value[i] = normalizeValue(item)
		}
		return value
	default:
		return v
	}
}

func toBson(filter Filter) bson.M {
	out := make(bson.M, len(filter))
	for k, v := range filter {
		if op, ok := v.(map[string]any); ok {
			out[k] = bson.M(op)
			continue
		}
		out[k] = v
	}
	return out
}
