package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docchat/docchat/internal/blob"
	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/db"
	"github.com/docchat/docchat/internal/embeddings"
	"github.com/docchat/docchat/internal/ingest"
	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docchat init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel))
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, 768, ""), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model)
}

// appComponents is everything a command needs to serve or ingest.
type appComponents struct {
	database *db.DB
	registry *ingest.Store
	vectors  vectordb.Store
	blobs    *blob.Store
	embedder embeddings.Embedder
	pipeline *ingest.Pipeline
}

// openComponents opens the data directory's stores and builds the
// ingestion pipeline.
func openComponents(cfg *config.Config) (*appComponents, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "docchat.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	vectors, err := vectordb.NewChromemStore(filepath.Join(cfg.DataDir, "vectordb"), embedder)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	blobs, err := blob.NewStore(filepath.Join(cfg.DataDir, "files"))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	registry := ingest.NewStore(database)
	pipeline := ingest.NewPipeline(registry, blobs, vectors, embedder, cfg.ChunkSize, cfg.ChunkOverlap)

	return &appComponents{
		database: database,
		registry: registry,
		vectors:  vectors,
		blobs:    blobs,
		embedder: embedder,
		pipeline: pipeline,
	}, nil
}

// newEngine builds the chat engine on top of the opened components.
func newEngine(cfg *config.Config, app *appComponents) (*chat.Engine, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	return chat.NewEngine(app.embedder, app.vectors, provider, cfg.Model, float32(cfg.SimilarityThreshold), cfg.SearchLimit), nil
}
