package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	RAG    RAGConfig    `yaml:"rag"`
	LLM    LLMConfig    `yaml:"llm"`
	TTS    TTSConfig    `yaml:"tts"`
}

type ServerConfig struct {
	Addr               string   `yaml:"addr"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
}

type StoreConfig struct {
	// "chromem" or "pgvector"
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	EncryptionKey string `yaml:"encryption_key"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	PostgresKey   string `yaml:"postgres_key"`
	VectorSize    int    `yaml:"vector_size"`
	Debug         bool   `yaml:"debug"`
}

type RAGConfig struct {
	ChunkSize       int     `yaml:"chunk_size"`
	ChunkOverlap    int     `yaml:"chunk_overlap"`
	MinSegmentChars int     `yaml:"min_segment_chars"`
	TopK            int     `yaml:"top_k"`
	// FetchK > TopK enables the diversity-aware (MMR) retrieval mode.
	FetchK    int     `yaml:"fetch_k"`
	MMRLambda float32 `yaml:"mmr_lambda"`
	MaxExcerpts     int     `yaml:"max_excerpts"`
}

type LLMConfig struct {
	Key            string  `yaml:"key"`
	BaseURL        string  `yaml:"base_url"`
	EmbeddingModel string  `yaml:"embedding_model"`
	InferenceModel string  `yaml:"inference_model"`
	Temperature    float64 `yaml:"temperature"`
}

type TTSConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	BaseURL string `yaml:"base_url"`
}

// LoadConfig reads the YAML config at path, then applies environment
// overrides and defaults. A missing file is not an error so the service can
// run on environment variables alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.Key = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		c.TTS.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_VOICE_ID"); v != "" {
		c.TTS.VoiceID = v
	}
	if v := os.Getenv("MEMOIR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MEMOIR_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("MEMOIR_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.RateLimitPerMinute = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{
			"https://captain-jim.vercel.app",
			"https://captain-jim-*.vercel.app",
			"http://localhost:5500",
			"http://127.0.0.1:5500",
		}
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "chromem"
	}
	if c.Store.Path == "" {
		c.Store.Path = "./chromemdb"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "memoir"
	}
	if c.Store.VectorSize == 0 {
		c.Store.VectorSize = 1536
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = 800
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = 100
	}
	if c.RAG.MinSegmentChars == 0 {
		c.RAG.MinSegmentChars = 100
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = 5
	}
	if c.RAG.FetchK == 0 {
		c.RAG.FetchK = 20
	}
	if c.RAG.MMRLambda == 0 {
		c.RAG.MMRLambda = 0.5
	}
	if c.RAG.MaxExcerpts == 0 {
		c.RAG.MaxExcerpts = 3
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.LLM.InferenceModel == "" {
		c.LLM.InferenceModel = "gpt-4o"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.4
	}
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = "https://api.elevenlabs.io"
	}
}
