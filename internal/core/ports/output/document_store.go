package ports

import (
	"context"

	"shipping-price-pipeline/internal/dataset"
)

// DocumentStore reads and writes whole collections of the document database.
type DocumentStore interface {
	// GetCollectionAsFrame returns every document of the collection, without _id
	GetCollectionAsFrame(ctx context.Context, dbName, collectionName string) (*dataset.Frame, error)

	// InsertFrameAsRecords inserts one document per row and returns how many were written
	InsertFrameAsRecords(ctx context.Context, frame *dataset.Frame, dbName, collectionName string) (int, error)
}
