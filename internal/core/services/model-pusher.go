package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	ports "shipping-price-pipeline/internal/core/ports/output"
)

// ModelPusher uploads an accepted model to the bucket and optionally rolls it out.
type ModelPusher struct {
	cfg        config.ModelPusherConfig
	evaluation domain.ModelEvaluationArtifacts
	objects    ports.ObjectStore
	kserve     ports.KServeClient
}

func NewModelPusher(
	cfg config.ModelPusherConfig,
	evaluation domain.ModelEvaluationArtifacts,
	objects ports.ObjectStore,
	kserve ports.KServeClient,
) *ModelPusher {
	return &ModelPusher{cfg: cfg, evaluation: evaluation, objects: objects, kserve: kserve}
}

func (s *ModelPusher) fail(op string, err error) error {
	return domain.NewPipelineError(domain.StagePusher, op, err)
}

// InitiateModelPusher uploads the model to its production and versioned keys.
// A rejected model is not uploaded.
func (s *ModelPusher) InitiateModelPusher(ctx context.Context) (*domain.ModelPusherArtifacts, error) {
	logger := log.WithField("stage", domain.StagePusher)
	logger.Info("entered model pusher")

	if !s.evaluation.IsModelAccepted {
		logger.WithField("difference", s.evaluation.ChangedAccuracy).Info("model not accepted, skipping upload")
		return &domain.ModelPusherArtifacts{
			BucketName:  s.cfg.BucketName,
			S3ModelPath: s.cfg.S3ModelKeyPath,
			Pushed:      false,
		}, nil
	}

	local := s.evaluation.TrainedModelPath
	if err := s.objects.UploadFile(ctx, local, s.cfg.BucketName, s.cfg.S3VersionedKey, false); err != nil {
		return nil, s.fail("upload versioned model", err)
	}
	if err := s.objects.UploadFile(ctx, local, s.cfg.BucketName, s.cfg.S3ModelKeyPath, s.cfg.RemoveLocalModel); err != nil {
		return nil, s.fail("upload model", err)
	}
	logger.WithFields(log.Fields{
		"bucket":    s.cfg.BucketName,
		"key":       s.cfg.S3ModelKeyPath,
		"versioned": s.cfg.S3VersionedKey,
	}).Info("uploaded model to s3 bucket")

	art := &domain.ModelPusherArtifacts{
		BucketName:         s.cfg.BucketName,
		S3ModelPath:        s.cfg.S3ModelKeyPath,
		VersionedModelPath: s.cfg.S3VersionedKey,
		Pushed:             true,
	}

	if s.kserve != nil && s.kserve.IsAvailable() {
		if err := s.rollout(ctx, art); err != nil {
			return nil, err
		}
	}

	logger.Info("exited model pusher")
	return art, nil
}

// rollout points the InferenceService at the versioned key and records whether
// it reports Ready. A failed status read is logged only; the patch already landed.
func (s *ModelPusher) rollout(ctx context.Context, art *domain.ModelPusherArtifacts) error {
	uri := fmt.Sprintf("s3://%s/%s", s.cfg.BucketName, s.cfg.S3VersionedKey)
	if _, err := s.kserve.Rollout(ctx, s.cfg.ServingNamespace, s.cfg.InferenceService, uri); err != nil {
		return s.fail("rollout model", err)
	}
	art.RolledOut = true

	logger := log.WithFields(log.Fields{
		"stage":     domain.StagePusher,
		"namespace": s.cfg.ServingNamespace,
		"name":      s.cfg.InferenceService,
	})
	status, err := s.kserve.GetStatus(ctx, s.cfg.ServingNamespace, s.cfg.InferenceService)
	if err != nil {
		logger.WithError(err).Warn("read inferenceservice status failed")
		return nil
	}
	art.ServingReady = status.Ready
	logger.WithFields(log.Fields{
		"ready":   status.Ready,
		"url":     status.URL,
		"message": status.Message,
	}).Info("inferenceservice status after rollout")
	return nil
}
