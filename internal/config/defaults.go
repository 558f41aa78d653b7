package config

// DefaultExcludes are glob patterns skipped by the batch ingester by
// default.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	".docchat/**",
	"*.lock",
	"*.min.js",
	"*.min.css",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		Model:               "gpt-4o-mini",
		EmbeddingProvider:   ProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		Port:                8080,
		DataDir:             ".docchat",
		ChunkSize:           1000,
		ChunkOverlap:        200,
		SimilarityThreshold: 0.7,
		SearchLimit:         5,
		MaxUploadMB:         32,
		Include:             []string{"**"},
		Exclude:             DefaultExcludes,
	}
}
