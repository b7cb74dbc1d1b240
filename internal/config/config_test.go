package config

import (
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Storage:   StorageConfig{Driver: "file", Dir: "data"},
		Retrieval: RetrievalConfig{AnswerMode: "hybrid", ChunkSize: 900, ChunkOverlap: 200},
	}
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownStorageDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "postgres"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
	expected := `storage.driver must be "file" or "redis", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_RedisDriverRequiresAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "redis"
	cfg.Storage.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis driver without addrs")
	}
}

func TestValidate_ChunkOverlapBounds(t *testing.T) {
	for _, overlap := range []int{900, 1000, -1} {
		cfg := validConfig()
		cfg.Retrieval.ChunkOverlap = overlap

		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for overlap=%d with chunk_size=900", overlap)
		}
	}
}

func TestValidate_InvalidAnswerMode(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.AnswerMode = "oracle"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown answer mode")
	}
}

func TestValidate_ValidAnswerModes(t *testing.T) {
	for _, mode := range []string{"rag_only", "hybrid", "model_only"} {
		t.Run("mode="+mode, func(t *testing.T) {
			cfg := validConfig()
			cfg.Retrieval.AnswerMode = mode

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid mode %q: %v", mode, err)
			}
		})
	}
}

func TestValidate_MemoryThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Memory.SimilarityThreshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestValidate_DuplicateSafetyPriorities(t *testing.T) {
	cfg := validConfig()
	cfg.Safety.Levels = []SafetyLevel{
		{Name: "high", Priority: 0},
		{Name: "critical", Priority: 0},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate safety priorities")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("expected Driver=file, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "origen:" {
		t.Errorf("expected KeyPrefix='origen:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.ChunkSize != 900 {
		t.Errorf("expected ChunkSize=900, got %d", cfg.Retrieval.ChunkSize)
	}
	if cfg.Retrieval.ChunkOverlap != 200 {
		t.Errorf("expected ChunkOverlap=200, got %d", cfg.Retrieval.ChunkOverlap)
	}
	if cfg.Retrieval.AnswerMode != "hybrid" {
		t.Errorf("expected AnswerMode=hybrid, got %q", cfg.Retrieval.AnswerMode)
	}
	if cfg.Retrieval.HybridMinSimilarity != 0.35 {
		t.Errorf("expected HybridMinSimilarity=0.35, got %f", cfg.Retrieval.HybridMinSimilarity)
	}
	if cfg.Memory.SimilarityThreshold != 0.85 {
		t.Errorf("expected SimilarityThreshold=0.85, got %f", cfg.Memory.SimilarityThreshold)
	}
	if len(cfg.Memory.NegativeMarkers) == 0 {
		t.Error("expected default negative markers")
	}
	if len(cfg.Generation.RefusalMarkers) == 0 {
		t.Error("expected default refusal markers")
	}
	if len(cfg.Classifier.InstitutionKeywords) == 0 {
		t.Error("expected default institution keywords")
	}
	if cfg.History.Path != "data/history.db" {
		t.Errorf("expected History.Path=data/history.db, got %q", cfg.History.Path)
	}
	if cfg.History.MaxTurns != 8 {
		t.Errorf("expected MaxTurns=8, got %d", cfg.History.MaxTurns)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage: StorageConfig{Driver: "redis", KeyPrefix: "custom:"},
		Retrieval: RetrievalConfig{
			TopK: 10, ChunkSize: 500, ChunkOverlap: 50, AnswerMode: "rag_only",
		},
		Memory: MemoryConfig{SimilarityThreshold: 0.9},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Storage.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Retrieval.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Retrieval.ChunkSize)
	}
	if cfg.Retrieval.AnswerMode != "rag_only" {
		t.Errorf("expected AnswerMode=rag_only, got %q", cfg.Retrieval.AnswerMode)
	}
	if cfg.Memory.SimilarityThreshold != 0.9 {
		t.Errorf("expected SimilarityThreshold=0.9, got %f", cfg.Memory.SimilarityThreshold)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ORIGEN_TEST_KEY", "sk-test-123")

	in := []byte("api_key: ${ORIGEN_TEST_KEY}\nmodel: ${ORIGEN_TEST_MODEL:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: sk-test-123\nmodel: gpt-4o-mini\n" {
		t.Errorf("unexpected expansion:\n%s", out)
	}
}

func TestExpandEnvVars_UnsetWithoutDefault(t *testing.T) {
	out := string(expandEnvVars([]byte("key: ${ORIGEN_DEFINITELY_UNSET}\n")))
	if out != "key: \n" {
		t.Errorf("unexpected expansion: %q", out)
	}
}
