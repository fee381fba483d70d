package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed tuning.yaml
var tuningYAML []byte

type Config struct {
	Camera    CameraConfig
	Detector  DetectorConfig
	Embedding EmbeddingConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Tuning    TuningConfig
}

type CameraConfig struct {
	URL string // snapshot endpoint of the camera service (e.g., http://localhost:8081)
}

type DetectorConfig struct {
	URL         string // primary face detector service
	FallbackURL string // optional secondary detector tried when the primary finds nothing
}

type EmbeddingConfig struct {
	URL string // optional deep face-embedding service; empty disables the embedding path
}

type StorageConfig struct {
	DataDir string // directory for identity and audit snapshots (default face_data)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects file snapshots
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// TuningConfig carries the engine tuning parameters. Defaults are embedded
// in tuning.yaml; the threshold can additionally be overridden through the
// VERIFY_THRESHOLD environment variable and adjusted at runtime.
type TuningConfig struct {
	Threshold            float64 `yaml:"threshold"`
	RequiredSamples      int     `yaml:"required_samples"`
	EnrollTimeoutSeconds int     `yaml:"enroll_timeout_seconds"`
	VerifyAttempts       int     `yaml:"verify_attempts"`
	MinFaceSize          int     `yaml:"min_face_size"`
	AuditRetention       int     `yaml:"audit_retention"`
	AuditSaveInterval    int     `yaml:"audit_save_interval"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var tuning TuningConfig
	if err := yaml.Unmarshal(tuningYAML, &tuning); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded tuning.yaml: " + err.Error())
	}
	tuning.Threshold = envFloat("VERIFY_THRESHOLD", tuning.Threshold)

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "face_data"
	}

	return &Config{
		Camera: CameraConfig{
			URL: os.Getenv("CAMERA_URL"),
		},
		Detector: DetectorConfig{
			URL:         os.Getenv("DETECTOR_URL"),
			FallbackURL: os.Getenv("DETECTOR_FALLBACK_URL"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Tuning: tuning,
	}
}
