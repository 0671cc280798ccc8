// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every runtime setting for the service.
type Config struct {
	// Upstream model access.
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	ModelName      string
	ImageModelName string

	// Hosted tool attachments.
	VectorStoreID string
	MCPServerURL  string

	// Knowledge base retrieval. The search_knowledge_base tool is
	// enabled only when both endpoint and name are set.
	AISearchEndpoint        string
	AISearchKnowledgeBase   string
	AISearchAPIKey          string
	AISearchReasoningEffort string

	// Conversation storage. Empty MongoURI selects the in-memory store.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// HTTP surface.
	Host           string
	Port           int
	AllowedOrigins []string

	// Observability.
	Debug        bool
	OTLPEndpoint string
}

// Load reads configuration from environment variables, applying defaults.
// It fails only on values that cannot be parsed; missing credentials are
// surfaced later, by the component that needs them.
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		ModelName:       getenv("MODEL_NAME", "gpt-5"),
		ImageModelName:  getenv("IMAGE_MODEL_NAME", "gpt-image-1"),
		VectorStoreID:   os.Getenv("VECTOR_STORE_ID"),
		MCPServerURL:    os.Getenv("MCP_SERVER_URL"),

		AISearchEndpoint:        os.Getenv("AI_SEARCH_ENDPOINT"),
		AISearchKnowledgeBase:   os.Getenv("AI_SEARCH_KNOWLEDGE_BASE_NAME"),
		AISearchAPIKey:          os.Getenv("AI_SEARCH_API_KEY"),
		AISearchReasoningEffort: getenv("AI_SEARCH_REASONING_EFFORT", "low"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   getenv("MONGO_DATABASE", "socialstudio"),
		MongoCollection: getenv("MONGO_COLLECTION", "conversations"),
		Host:            getenv("HOST", "0.0.0.0"),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	port := getenv("PORT", "8000")
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("config: invalid PORT %q: %w", port, err)
	}
	cfg.Port = p

	if debug := os.Getenv("DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err != nil {
			return nil, fmt.Errorf("config: invalid DEBUG %q: %w", debug, err)
		}
		cfg.Debug = d
	}

	origins := getenv("ALLOWED_ORIGINS", "*")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	return cfg, nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
