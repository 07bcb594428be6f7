package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipping-price-pipeline/internal/core/domain"
	"shipping-price-pipeline/internal/core/ports/output"
	"shipping-price-pipeline/internal/dataset"
)

// MockDocumentStore is a mock of DocumentStore.
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) GetCollectionAsFrame(ctx context.Context, dbName, collectionName string) (*dataset.Frame, error) {
	args := m.Called(ctx, dbName, collectionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataset.Frame), args.Error(1)
}

func (m *MockDocumentStore) InsertFrameAsRecords(ctx context.Context, frame *dataset.Frame, dbName, collectionName string) (int, error) {
	args := m.Called(ctx, frame, dbName, collectionName)
	return args.Int(0), args.Error(1)
}

// MockObjectStore is a mock of ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) IsObjectPresent(ctx context.Context, bucket, key string) (bool, error) {
	args := m.Called(ctx, bucket, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockObjectStore) UploadFile(ctx context.Context, localPath, bucket, key string, remove bool) error {
	args := m.Called(ctx, localPath, bucket, key, remove)
	return args.Error(0)
}

// MockTrainingRunRepo is a mock of TrainingRunRepository.
type MockTrainingRunRepo struct {
	mock.Mock
}

func (m *MockTrainingRunRepo) Create(ctx context.Context, run *domain.TrainingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTrainingRunRepo) Update(ctx context.Context, run *domain.TrainingRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockKServeClient is a mock of KServeClient.
type MockKServeClient struct {
	mock.Mock
}

func (m *MockKServeClient) Rollout(ctx context.Context, namespace, name, storageURI string) (*ports.KServeRollout, error) {
	args := m.Called(ctx, namespace, name, storageURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.KServeRollout), args.Error(1)
}

func (m *MockKServeClient) GetStatus(ctx context.Context, namespace, name string) (*ports.KServeStatus, error) {
	args := m.Called(ctx, namespace, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.KServeStatus), args.Error(1)
}

func (m *MockKServeClient) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}
