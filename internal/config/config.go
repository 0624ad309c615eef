package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/celebware/starspot/internal/constants"
)

//go:embed palette.yaml
var paletteYAML []byte

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Profile   ProfileConfig
	Detector  DetectorConfig
	Segmenter SegmenterConfig
	Matching  MatchingConfig
	Render    RenderConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Ollama    OllamaConfig
	LlamaCpp  LlamaCppConfig
	Palette   PaletteConfig
	Prices    PricesConfig
}

type ServerConfig struct {
	Host           string   // bind address, empty means all interfaces
	Port           int      // defaults to 8080
	AllowedOrigins []string // CORS origins, defaults to ["*"]
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 5)
	MaxIdleConns int    // Maximum idle connections (default 2)
	HNSWIndex    bool   // build the in-memory similarity index on startup (default true)
}

type ProfileConfig struct {
	DatabaseURL string // MySQL DSN for celebrity profiles (e.g., starspot:starspot@tcp(mysql:3306)/starspot)
}

type DetectorConfig struct {
	URL   string // face detection model server, defaults to http://localhost:7100
	Model string // detection model, "fast" (default) or "accurate"
}

type SegmenterConfig struct {
	URL           string // person segmentation model server, defaults to http://localhost:7200
	MaxConcurrent int    // concurrent segmentation requests (default 4)
}

type MatchingConfig struct {
	Tolerance    float64 // maximum embedding distance for a match (default 0.6)
	EmbeddingDim int     // defaults to 128
}

type RenderConfig struct {
	FontPath string // TTF font for labels, empty falls back to a built-in bitmap face
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2:3b
}

type LlamaCppConfig struct {
	URL   string // defaults to http://localhost:8080
	Model string // defaults to llama3
}

type PaletteConfig struct {
	Colors      []string              `yaml:"colors"`
	Backgrounds map[string]AnchorPair `yaml:"backgrounds"`
}

type PricesConfig struct {
	Models map[string]RequestPricing `yaml:"models"`
}

// RequestPricing holds input/output prices per 1M tokens.
type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// AnchorPair holds the top and bottom RGB anchors of a vertical gradient.
type AnchorPair struct {
	Top    [3]uint8 `yaml:"top"`
	Bottom [3]uint8 `yaml:"bottom"`
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

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaultVal
}

// envOrigins parses a comma-separated origin list. An unset or empty
// variable allows all origins, matching the public demo deployment.
func envOrigins(key string) []string {
	s := os.Getenv(key)
	if s == "" {
		return []string{"*"}
	}
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func Load() *Config {
	var palette PaletteConfig
	if err := yaml.Unmarshal(paletteYAML, &palette); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded palette.yaml: " + err.Error())
	}

	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	return &Config{
		Server: ServerConfig{
			Host:           os.Getenv("WEB_HOST"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envOrigins("WEB_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 5),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 2),
			HNSWIndex:    envBool("HNSW_INDEX", true),
		},
		Profile: ProfileConfig{
			DatabaseURL: os.Getenv("PROFILE_DATABASE_URL"),
		},
		Detector: DetectorConfig{
			URL:   envStr("DETECTOR_URL", "http://localhost:7100"),
			Model: os.Getenv("DETECTOR_MODEL"),
		},
		Segmenter: SegmenterConfig{
			URL:           envStr("SEGMENTER_URL", "http://localhost:7200"),
			MaxConcurrent: envInt("SEGMENTER_MAX_CONCURRENT", constants.DefaultSegmenterConcurrency),
		},
		Matching: MatchingConfig{
			Tolerance:    envFloat("MATCH_TOLERANCE", constants.DefaultMatchTolerance),
			EmbeddingDim: envInt("EMBEDDING_DIM", constants.EmbeddingDim),
		},
		Render: RenderConfig{
			FontPath: os.Getenv("FONT_PATH"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		LlamaCpp: LlamaCppConfig{
			URL:   os.Getenv("LLAMACPP_URL"),
			Model: os.Getenv("LLAMACPP_MODEL"),
		},
		Palette: palette,
		Prices:  prices,
	}
}

// GetModelPricing returns pricing for a specific model, with fallback defaults
func (c *Config) GetModelPricing(modelName string) RequestPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	// Return zero pricing if model not found
	return RequestPricing{}
}
