package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Logger     LoggerConfig
	Mongo      MongoConfig
	Storage    StorageConfig
	Database   DatabaseConfig
	Kubernetes KubernetesConfig
	Pipeline   PipelineConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

type MongoConfig struct {
	URL        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type StorageConfig struct {
	Bucket       string
	ModelKey     string
	Region       string
	Endpoint     string
	UsePathStyle bool
	AccessKey    string
	SecretKey    string
}

// DatabaseConfig configures the optional training-run registry.
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// KubernetesConfig configures the optional KServe rollout after a push.
type KubernetesConfig struct {
	Enabled          bool
	InCluster        bool
	KubeConfigPath   string
	DefaultNS        string
	InferenceService string
}

type PipelineConfig struct {
	ArtifactsDir     string
	SchemaFile       string
	ModelFileName    string
	TestSize         float64
	Seed             uint64
	Alpha            float64
	ExpectedScore    float64
	ForceAccept      bool
	RemoveLocalModel bool
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	v.SetDefault("MONGODB_URL", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "shipping")
	v.SetDefault("MONGODB_COLLECTION", "shipping_data")
	v.SetDefault("MONGODB_TIMEOUT", "30s")

	v.SetDefault("S3_BUCKET", "shipping-price-model")
	v.SetDefault("S3_MODEL_KEY", "model/shipping_price_model.json")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_USE_PATH_STYLE", false)
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "training")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 4)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	v.SetDefault("K8S_ENABLED", false)
	v.SetDefault("K8S_IN_CLUSTER", false)
	v.SetDefault("K8S_KUBECONFIG", "")
	v.SetDefault("K8S_NAMESPACE", "model-serving")
	v.SetDefault("K8S_INFERENCE_SERVICE", "shipping-price")

	v.SetDefault("PIPELINE_ARTIFACTS_DIR", "artifacts")
	v.SetDefault("PIPELINE_SCHEMA_FILE", "configs/schema.yaml")
	v.SetDefault("PIPELINE_MODEL_FILE_NAME", "shipping_price_model.json")
	v.SetDefault("PIPELINE_TEST_SIZE", 0.2)
	v.SetDefault("PIPELINE_SEED", 0)
	v.SetDefault("PIPELINE_ALPHA", 1.0)
	v.SetDefault("PIPELINE_EXPECTED_SCORE", 0.0)
	v.SetDefault("PIPELINE_FORCE_ACCEPT", false)
	v.SetDefault("PIPELINE_REMOVE_LOCAL_MODEL", false)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Mongo: MongoConfig{
			URL:        v.GetString("MONGODB_URL"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    parseDuration(v.GetString("MONGODB_TIMEOUT"), 30*time.Second),
		},
		Storage: StorageConfig{
			Bucket:       v.GetString("S3_BUCKET"),
			ModelKey:     v.GetString("S3_MODEL_KEY"),
			Region:       v.GetString("S3_REGION"),
			Endpoint:     v.GetString("S3_ENDPOINT"),
			UsePathStyle: v.GetBool("S3_USE_PATH_STYLE"),
			AccessKey:    v.GetString("S3_ACCESS_KEY"),
			SecretKey:    v.GetString("S3_SECRET_KEY"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), 5*time.Minute),
		},
		Kubernetes: KubernetesConfig{
			Enabled:          v.GetBool("K8S_ENABLED"),
			InCluster:        v.GetBool("K8S_IN_CLUSTER"),
			KubeConfigPath:   v.GetString("K8S_KUBECONFIG"),
			DefaultNS:        v.GetString("K8S_NAMESPACE"),
			InferenceService: v.GetString("K8S_INFERENCE_SERVICE"),
		},
		Pipeline: PipelineConfig{
			ArtifactsDir:     v.GetString("PIPELINE_ARTIFACTS_DIR"),
			SchemaFile:       v.GetString("PIPELINE_SCHEMA_FILE"),
			ModelFileName:    v.GetString("PIPELINE_MODEL_FILE_NAME"),
			TestSize:         v.GetFloat64("PIPELINE_TEST_SIZE"),
			Seed:             v.GetUint64("PIPELINE_SEED"),
			Alpha:            v.GetFloat64("PIPELINE_ALPHA"),
			ExpectedScore:    v.GetFloat64("PIPELINE_EXPECTED_SCORE"),
			ForceAccept:      v.GetBool("PIPELINE_FORCE_ACCEPT"),
			RemoveLocalModel: v.GetBool("PIPELINE_REMOVE_LOCAL_MODEL"),
		},
	}

	if cfg.Mongo.URL == "" {
		return nil, errors.New("MONGODB_URL is required")
	}
	if cfg.Storage.Bucket == "" {
		return nil, errors.New("S3_BUCKET is required")
	}
	if cfg.Pipeline.TestSize <= 0 || cfg.Pipeline.TestSize >= 1 {
		return nil, fmt.Errorf("PIPELINE_TEST_SIZE must be in (0, 1), got %v", cfg.Pipeline.TestSize)
	}

	return cfg, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
