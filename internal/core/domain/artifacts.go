package domain

// Stage identifies one step of the training pipeline. The value doubles as the
// name of the stage's directory inside a run's artifact tree.
type Stage string

const (
	StageIngestion      Stage = "data_ingestion"
	StageValidation     Stage = "data_validation"
	StageTransformation Stage = "data_transformation"
	StageTrainer        Stage = "model_trainer"
	StageEvaluation     Stage = "model_evaluation"
	StagePusher         Stage = "model_pusher"
	StagePipeline       Stage = "training_pipeline"
)

// ============================================================================
// Artifacts
// ============================================================================
//
// Artifacts are produced once at the end of a stage and passed by value to the
// next one. They only carry file locations and scalars.

type DataIngestionArtifacts struct {
	TrainFilePath string `json:"train_file_path"`
	TestFilePath  string `json:"test_file_path"`
}

type DataValidationArtifacts struct {
	ValidationStatus bool   `json:"validation_status"`
	Message          string `json:"message"`
	ReportFilePath   string `json:"report_file_path"`
}

type DataTransformationArtifacts struct {
	TransformedTrainFilePath string `json:"transformed_train_file_path"`
	TransformedTestFilePath  string `json:"transformed_test_file_path"`
	PreprocessorFilePath     string `json:"preprocessor_file_path"`
}

type ModelTrainerArtifacts struct {
	TrainedModelFilePath string  `json:"trained_model_file_path"`
	TrainScore           float64 `json:"train_score"`
	TestScore            float64 `json:"test_score"`
}

type ModelEvaluationArtifacts struct {
	IsModelAccepted    bool     `json:"is_model_accepted"`
	TrainedModelPath   string   `json:"trained_model_path"`
	ChangedAccuracy    float64  `json:"changed_accuracy"`
	TrainedModelScore  float64  `json:"trained_model_score"`
	DeployedModelScore *float64 `json:"deployed_model_score,omitempty"`
}

type ModelPusherArtifacts struct {
	BucketName         string `json:"bucket_name"`
	S3ModelPath        string `json:"s3_model_path"`
	VersionedModelPath string `json:"versioned_model_path,omitempty"`
	Pushed             bool   `json:"pushed"`
	RolledOut          bool   `json:"rolled_out"`
	ServingReady       bool   `json:"serving_ready"`
}

// EvaluateModelResponse is the outcome of comparing the trained model with the
// deployed one. DeployedModelScore is nil when no model is deployed yet.
type EvaluateModelResponse struct {
	TrainedModelScore  float64
	DeployedModelScore *float64
	IsModelAccepted    bool
	Difference         float64
}
