package ports

import (
	"context"
)

// KServeRollout represents the result of pointing an InferenceService at a new model
type KServeRollout struct {
	Namespace  string
	Name       string
	StorageURI string
	Generation int64
}

// KServeStatus is the Ready condition of an InferenceService
type KServeStatus struct {
	URL        string
	Ready      bool
	Message    string
	Generation int64
}

// KServeClient defines the contract for rolling a pushed model out to KServe
type KServeClient interface {
	// Rollout patches the InferenceService predictor storage URI
	Rollout(ctx context.Context, namespace, name, storageURI string) (*KServeRollout, error)

	// GetStatus reads the InferenceService Ready condition
	GetStatus(ctx context.Context, namespace, name string) (*KServeStatus, error)

	// IsAvailable checks if KServe integration is enabled and configured
	IsAvailable() bool
}
