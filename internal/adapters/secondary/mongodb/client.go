package mongodb

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	ports "shipping-price-pipeline/internal/core/ports/output"
	"shipping-price-pipeline/internal/dataset"
)

const idField = "_id"

type documentStore struct {
	client *mongo.Client
}

// NewDocumentStore connects to MongoDB and checks the connection.
func NewDocumentStore(ctx context.Context, cfg *config.MongoConfig) (ports.DocumentStore, func(context.Context) error, error) {
	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.Timeout > 0 {
		opts.SetConnectTimeout(cfg.Timeout).SetServerSelectionTimeout(cfg.Timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &documentStore{client: client}, client.Disconnect, nil
}

func (s *documentStore) GetCollectionAsFrame(ctx context.Context, dbName, collectionName string) (*dataset.Frame, error) {
	coll := s.client.Database(dbName).Collection(collectionName)

	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s.%s: %w", dbName, collectionName, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s.%s: %w", dbName, collectionName, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s.%s: %w", dbName, collectionName, domain.ErrEmptyCollection)
	}

	records := make([]dataset.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, toRecord(doc))
	}
	frame := dataset.FromRecords(records).DropIfPresent(idField)

	log.WithFields(log.Fields{
		"database":   dbName,
		"collection": collectionName,
		"rows":       frame.Len(),
		"columns":    len(frame.Columns),
	}).Info("converted collection to frame")

	return frame, nil
}

func (s *documentStore) InsertFrameAsRecords(ctx context.Context, frame *dataset.Frame, dbName, collectionName string) (int, error) {
	records := frame.Records()
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, rec := range records {
		docs = append(docs, toDocument(rec))
	}

	coll := s.client.Database(dbName).Collection(collectionName)
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert into %s.%s: %w", dbName, collectionName, err)
	}

	log.WithFields(log.Fields{
		"database":   dbName,
		"collection": collectionName,
		"inserted":   len(res.InsertedIDs),
	}).Info("inserted records into mongodb")

	return len(res.InsertedIDs), nil
}

func toRecord(doc bson.D) dataset.Record {
	rec := make(dataset.Record, 0, len(doc))
	for _, e := range doc {
		rec = append(rec, dataset.Field{Key: e.Key, Value: normalizeValue(e.Value)})
	}
	return rec
}

func toDocument(rec dataset.Record) bson.D {
	doc := make(bson.D, 0, len(rec))
	for _, f := range rec {
		doc = append(doc, bson.E{Key: f.Key, Value: f.Value})
	}
	return doc
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format("2006-01-02T15:04:05Z07:00")
	case primitive.Decimal128:
		return t.String()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}
