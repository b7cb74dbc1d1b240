package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/origenlabs/origen/internal/domain"
)

// Config holds the origen service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Memory     MemoryConfig     `yaml:"memory"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Safety     SafetyConfig     `yaml:"safety"`
	History    HistoryConfig    `yaml:"history"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig holds blob store settings.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // file, redis (default: file)
	Dir              string   `yaml:"dir"`    // file driver data directory
	Addrs            []string `yaml:"addrs"`  // redis driver addresses
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// KnowledgeConfig holds document source settings.
type KnowledgeConfig struct {
	Dir string `yaml:"dir"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// GenerationConfig holds text-generation provider settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	// RefusalMarkers identify generator refusals that must be replaced with a
	// context-built safe fallback.
	RefusalMarkers []string `yaml:"refusal_markers"`
}

// RetrievalConfig holds chunking and context search settings.
type RetrievalConfig struct {
	TopK             int     `yaml:"top_k"`
	MinSimilarity    float64 `yaml:"min_similarity"`
	ChunkSize        int     `yaml:"chunk_size"`
	ChunkOverlap     int     `yaml:"chunk_overlap"`
	MaxFragmentChars int     `yaml:"max_fragment_chars"`
	// AnswerMode is one of rag_only, hybrid, model_only.
	AnswerMode          string  `yaml:"answer_mode"`
	HybridMinSimilarity float64 `yaml:"hybrid_min_similarity"`
	LexicalWindow       int     `yaml:"lexical_window"`
	LexicalMaxSnippets  int     `yaml:"lexical_max_snippets"`
}

// MemoryConfig holds semantic answer cache settings.
type MemoryConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// NegativeMarkers are lowercase substrings marking unhelpful answers that
	// must never be cached or served from cache.
	NegativeMarkers []string `yaml:"negative_markers"`
}

// ClassifierConfig holds knowledge-source classifier settings.
type ClassifierConfig struct {
	// InstitutionKeywords short-circuit the classifier to domain-specific.
	InstitutionKeywords []string `yaml:"institution_keywords"`
	// Departments maps topic keywords to the office suggested when no
	// context is available for an institutional question.
	Departments map[string]string `yaml:"departments"`
}

// SafetyConfig holds crisis-protocol settings. Empty Levels means the
// built-in default levels are used.
type SafetyConfig struct {
	Levels    []SafetyLevel `yaml:"levels"`
	Resources []string      `yaml:"resources"`
}

// SafetyLevel is one configured severity level.
type SafetyLevel struct {
	Name            string   `yaml:"name"`
	Label           string   `yaml:"label"`
	Priority        int      `yaml:"priority"` // lower = more severe, checked first
	Patterns        []string `yaml:"patterns"`
	Response        string   `yaml:"response"`
	Resources       []string `yaml:"resources"`
	Recommendations []string `yaml:"recommendations"`
	AlertRequired   bool     `yaml:"alert_required"`
}

// HistoryConfig holds session history settings.
type HistoryConfig struct {
	Path     string `yaml:"path"`
	MaxTurns int    `yaml:"max_turns"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", domain.ErrConfigInvalid, err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "origen:"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 1024
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.3
	}
	if len(c.Generation.RefusalMarkers) == 0 {
		c.Generation.RefusalMarkers = defaultRefusalMarkers()
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.ChunkSize == 0 {
		c.Retrieval.ChunkSize = 900
	}
	if c.Retrieval.ChunkOverlap == 0 {
		c.Retrieval.ChunkOverlap = 200
	}
	if c.Retrieval.MaxFragmentChars <= 0 {
		c.Retrieval.MaxFragmentChars = 1200
	}
	if c.Retrieval.AnswerMode == "" {
		c.Retrieval.AnswerMode = "hybrid"
	}
	if c.Retrieval.HybridMinSimilarity <= 0 {
		c.Retrieval.HybridMinSimilarity = 0.35
	}
	if c.Retrieval.LexicalWindow <= 0 {
		c.Retrieval.LexicalWindow = 220
	}
	if c.Retrieval.LexicalMaxSnippets <= 0 {
		c.Retrieval.LexicalMaxSnippets = 3
	}
	if c.Memory.SimilarityThreshold <= 0 {
		c.Memory.SimilarityThreshold = 0.85
	}
	if len(c.Memory.NegativeMarkers) == 0 {
		c.Memory.NegativeMarkers = defaultNegativeMarkers()
	}
	if len(c.Classifier.InstitutionKeywords) == 0 {
		c.Classifier.InstitutionKeywords = defaultInstitutionKeywords()
	}
	if len(c.Classifier.Departments) == 0 {
		c.Classifier.Departments = defaultDepartments()
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(c.Storage.Dir, "history.db")
	}
	if c.History.MaxTurns <= 0 {
		c.History.MaxTurns = 8
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the file driver")
		}
	case "redis":
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be \"file\" or \"redis\", got %q", c.Storage.Driver)
	}
	if c.Retrieval.ChunkSize > 0 {
		if c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
			return fmt.Errorf("retrieval.chunk_overlap must satisfy 0 <= overlap < chunk_size, got %d/%d",
				c.Retrieval.ChunkOverlap, c.Retrieval.ChunkSize)
		}
	}
	switch c.Retrieval.AnswerMode {
	case "rag_only", "hybrid", "model_only":
	default:
		return fmt.Errorf("retrieval.answer_mode must be rag_only, hybrid, or model_only, got %q",
			c.Retrieval.AnswerMode)
	}
	if c.Memory.SimilarityThreshold > 1 {
		return fmt.Errorf("memory.similarity_threshold must be in (0, 1], got %f", c.Memory.SimilarityThreshold)
	}
	seen := make(map[int]string, len(c.Safety.Levels))
	for _, lvl := range c.Safety.Levels {
		if prev, ok := seen[lvl.Priority]; ok {
			return fmt.Errorf("safety levels %q and %q share priority %d", prev, lvl.Name, lvl.Priority)
		}
		seen[lvl.Priority] = lvl.Name
	}
	return nil
}

func defaultNegativeMarkers() []string {
	return []string{
		"no tengo información suficiente",
		"no puedo responder",
		"no puedo proporcionar",
		"no pude generar una respuesta",
		"no dispongo de las regulaciones",
		"no está en mi contexto",
		"te aconsejo consultar",
		"consulta el reglamento",
		"consulta con la oficina",
	}
}

func defaultRefusalMarkers() []string {
	return []string{
		"filtros de seguridad",
		"no puedo procesar esa solicitud por razones de seguridad",
		"no puedo proporcionar esa información",
	}
}

func defaultInstitutionKeywords() []string {
	return []string{
		"universidad", "unimagdalena", "estudiante", "carrera", "programa",
		"docente", "profesor", "materia", "facultad", "admisión", "matrícula", "grado",
	}
}

func defaultDepartments() map[string]string {
	return map[string]string{
		"admisiones":    "Oficina de Admisiones y Registro Académico",
		"matrícula":     "Oficina de Admisiones y Registro Académico",
		"becas":         "Oficina de Bienestar Universitario",
		"psicológico":   "Oficina de Bienestar Universitario",
		"deportes":      "Oficina de Deportes",
		"pagos":         "Tesorería",
		"financiera":    "Tesorería",
		"internacional": "Oficina de Relaciones Internacionales",
		"carnet":        "Oficina de Bienestar Universitario",
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
