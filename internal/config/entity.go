package config

import (
	"path"
	"path/filepath"
	"time"

	"shipping-price-pipeline/internal/core/domain"
)

// TimestampLayout names each run's artifact directory.
const TimestampLayout = "01_02_2006_15_04_05"

const (
	trainDirName        = "train"
	testDirName         = "test"
	trainFileName       = "train.csv"
	testFileName        = "test.csv"
	reportFileName      = "report.yaml"
	preprocessorName    = "preprocessor.json"
	transformedTrainCSV = "train_transformed.csv"
	transformedTestCSV  = "test_transformed.csv"
)

// TrainingPipelineConfig is built once per run and fixes the artifact
// directory every stage writes under.
type TrainingPipelineConfig struct {
	Timestamp   string
	ArtifactDir string
	Schema      Schema
	Config      *Config
}

// NewTrainingPipelineConfig derives the run's artifact directory from now.
func NewTrainingPipelineConfig(cfg *Config, schema *Schema, now time.Time) *TrainingPipelineConfig {
	ts := now.Format(TimestampLayout)
	return &TrainingPipelineConfig{
		Timestamp:   ts,
		ArtifactDir: filepath.Join(cfg.Pipeline.ArtifactsDir, ts),
		Schema:      *schema,
		Config:      cfg,
	}
}

func (c *TrainingPipelineConfig) stageDir(stage domain.Stage) string {
	return filepath.Join(c.ArtifactDir, string(stage))
}

type DataIngestionConfig struct {
	DBName                   string
	CollectionName           string
	DropColumns              []string
	TestSize                 float64
	Seed                     uint64
	DataIngestionArtifactDir string
	TrainDataDir             string
	TestDataDir              string
	TrainDataFilePath        string
	TestDataFilePath         string
}

func (c *TrainingPipelineConfig) DataIngestion() DataIngestionConfig {
	dir := c.stageDir(domain.StageIngestion)
	trainDir := filepath.Join(dir, trainDirName)
	testDir := filepath.Join(dir, testDirName)
	return DataIngestionConfig{
		DBName:                   c.Config.Mongo.Database,
		CollectionName:           c.Config.Mongo.Collection,
		DropColumns:              append([]string(nil), c.Schema.DropColumns...),
		TestSize:                 c.Config.Pipeline.TestSize,
		Seed:                     c.Config.Pipeline.Seed,
		DataIngestionArtifactDir: dir,
		TrainDataDir:             trainDir,
		TestDataDir:              testDir,
		TrainDataFilePath:        filepath.Join(trainDir, trainFileName),
		TestDataFilePath:         filepath.Join(testDir, testFileName),
	}
}

type DataValidationConfig struct {
	Schema         Schema
	ReportFilePath string
}

func (c *TrainingPipelineConfig) DataValidation() DataValidationConfig {
	dir := c.stageDir(domain.StageValidation)
	return DataValidationConfig{
		Schema:         c.Schema,
		ReportFilePath: filepath.Join(dir, reportFileName),
	}
}

type DataTransformationConfig struct {
	Schema                   Schema
	TransformedTrainFilePath string
	TransformedTestFilePath  string
	PreprocessorFilePath     string
}

func (c *TrainingPipelineConfig) DataTransformation() DataTransformationConfig {
	dir := c.stageDir(domain.StageTransformation)
	return DataTransformationConfig{
		Schema:                   c.Schema,
		TransformedTrainFilePath: filepath.Join(dir, transformedTrainCSV),
		TransformedTestFilePath:  filepath.Join(dir, transformedTestCSV),
		PreprocessorFilePath:     filepath.Join(dir, preprocessorName),
	}
}

type ModelTrainerConfig struct {
	TargetColumn         string
	ModelName            string
	Alpha                float64
	ExpectedScore        float64
	TrainedModelFilePath string
}

func (c *TrainingPipelineConfig) ModelTrainer() ModelTrainerConfig {
	dir := c.stageDir(domain.StageTrainer)
	return ModelTrainerConfig{
		TargetColumn:         c.Schema.TargetColumn,
		ModelName:            c.Config.Pipeline.ModelFileName,
		Alpha:                c.Config.Pipeline.Alpha,
		ExpectedScore:        c.Config.Pipeline.ExpectedScore,
		TrainedModelFilePath: filepath.Join(dir, c.Config.Pipeline.ModelFileName),
	}
}

type ModelEvaluationConfig struct {
	BucketName  string
	S3ModelKey  string
	ForceAccept bool
}

func (c *TrainingPipelineConfig) ModelEvaluation() ModelEvaluationConfig {
	return ModelEvaluationConfig{
		BucketName:  c.Config.Storage.Bucket,
		S3ModelKey:  c.Config.Storage.ModelKey,
		ForceAccept: c.Config.Pipeline.ForceAccept,
	}
}

type ModelPusherConfig struct {
	BucketName       string
	S3ModelKeyPath   string
	S3VersionedKey   string
	RemoveLocalModel bool
	InferenceService string
	ServingNamespace string
}

func (c *TrainingPipelineConfig) ModelPusher() ModelPusherConfig {
	key := c.Config.Storage.ModelKey
	versioned := path.Join(path.Dir(key), "versions", c.Timestamp, path.Base(key))
	return ModelPusherConfig{
		BucketName:       c.Config.Storage.Bucket,
		S3ModelKeyPath:   key,
		S3VersionedKey:   versioned,
		RemoveLocalModel: c.Config.Pipeline.RemoveLocalModel,
		InferenceService: c.Config.Kubernetes.InferenceService,
		ServingNamespace: c.Config.Kubernetes.DefaultNS,
	}
}
