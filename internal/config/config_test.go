package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Storage.DataDir != "face_data" {
		t.Errorf("expected default data dir 'face_data', got %q", cfg.Storage.DataDir)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default MaxOpenConns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default MaxIdleConns 5, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoadEmbeddedTuning(t *testing.T) {
	cfg := Load()

	if cfg.Tuning.Threshold != 0.55 {
		t.Errorf("expected embedded threshold 0.55, got %f", cfg.Tuning.Threshold)
	}
	if cfg.Tuning.RequiredSamples != 3 {
		t.Errorf("expected 3 required samples, got %d", cfg.Tuning.RequiredSamples)
	}
	if cfg.Tuning.EnrollTimeoutSeconds != 30 {
		t.Errorf("expected 30s enrollment timeout, got %d", cfg.Tuning.EnrollTimeoutSeconds)
	}
	if cfg.Tuning.AuditRetention != 1000 {
		t.Errorf("expected audit retention 1000, got %d", cfg.Tuning.AuditRetention)
	}
	if cfg.Tuning.AuditSaveInterval != 10 {
		t.Errorf("expected audit save interval 10, got %d", cfg.Tuning.AuditSaveInterval)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/faces")
	t.Setenv("VERIFY_THRESHOLD", "0.7")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")
	t.Setenv("CAMERA_URL", "http://camera:8081")

	cfg := Load()

	if cfg.Storage.DataDir != "/tmp/faces" {
		t.Errorf("expected data dir '/tmp/faces', got %q", cfg.Storage.DataDir)
	}
	if cfg.Tuning.Threshold != 0.7 {
		t.Errorf("expected threshold 0.7, got %f", cfg.Tuning.Threshold)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("expected MaxOpenConns 10, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Camera.URL != "http://camera:8081" {
		t.Errorf("expected camera URL, got %q", cfg.Camera.URL)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"empty", "", 25},
		{"not a number", "abc", 25},
		{"negative", "-3", 25},
		{"zero", "0", 25},
		{"valid", "7", 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DATABASE_MAX_OPEN_CONNS", tc.value)
			if got := envInt("DATABASE_MAX_OPEN_CONNS", 25); got != tc.expected {
				t.Errorf("envInt(%q) = %d; want %d", tc.value, got, tc.expected)
			}
		})
	}
}
