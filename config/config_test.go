package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-5", cfg.ModelName)
	assert.Equal(t, "gpt-image-1", cfg.ImageModelName)
	assert.Equal(t, "socialstudio", cfg.MongoDatabase)
	assert.Equal(t, "conversations", cfg.MongoCollection)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "low", cfg.AISearchReasoningEffort)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_NAME", "gpt-5-mini")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("AI_SEARCH_ENDPOINT", "https://search.example")
	t.Setenv("AI_SEARCH_KNOWLEDGE_BASE_NAME", "kb-main")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-5-mini", cfg.ModelName)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "https://search.example", cfg.AISearchEndpoint)
	assert.Equal(t, "kb-main", cfg.AISearchKnowledgeBase)
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidDebug(t *testing.T) {
	t.Setenv("DEBUG", "maybe")
	_, err := Load()
	assert.Error(t, err)
}
