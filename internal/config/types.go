package config

// ProviderType identifies an embedding/LLM provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level docchat configuration, corresponding to
// .docchat.yml.
type Config struct {
	Provider            ProviderType `yaml:"provider" koanf:"provider"`
	Model               string       `yaml:"model" koanf:"model"`
	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	Port                int          `yaml:"port" koanf:"port"`
	DataDir             string       `yaml:"data_dir" koanf:"data_dir"`
	ChunkSize           int          `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap        int          `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	SimilarityThreshold float64      `yaml:"similarity_threshold" koanf:"similarity_threshold"`
	SearchLimit         int          `yaml:"search_limit" koanf:"search_limit"`
	MaxUploadMB         int          `yaml:"max_upload_mb" koanf:"max_upload_mb"`
	AllowAllOrigins     bool         `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	Include             []string     `yaml:"include" koanf:"include"`
	Exclude             []string     `yaml:"exclude" koanf:"exclude"`
}
