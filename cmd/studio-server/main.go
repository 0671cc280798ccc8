// Command studio-server runs the social content studio API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"

	"github.com/socialstudio/studio/agent"
	"github.com/socialstudio/studio/config"
	"github.com/socialstudio/studio/conversation"
	"github.com/socialstudio/studio/conversation/inmemory"
	"github.com/socialstudio/studio/conversation/mongodb"
	"github.com/socialstudio/studio/log"
	"github.com/socialstudio/studio/server"
	"github.com/socialstudio/studio/telemetry"
	"github.com/socialstudio/studio/tool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Start(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("start telemetry: %v", err)
	}
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutCtx); err != nil {
			log.Warnf("telemetry shutdown: %v", err)
		}
	}()

	conversations := buildConversationService(ctx, cfg)

	var clientOpts []ooption.RequestOption
	if cfg.OpenAIBaseURL != "" {
		clientOpts = append(clientOpts, ooption.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.OpenAIAPIKey != "" {
		clientOpts = append(clientOpts, ooption.WithAPIKey(cfg.OpenAIAPIKey))
	}
	client := openai.NewClient(clientOpts...)

	images := tool.NewImageGenerator(client, cfg.ImageModelName)
	agentOpts := []agent.Option{
		agent.WithVectorStoreID(cfg.VectorStoreID),
		agent.WithMCPServerURL(cfg.MCPServerURL),
		agent.WithImageGenerator(images),
	}
	if cfg.AISearchEndpoint != "" && cfg.AISearchKnowledgeBase != "" {
		knowledge := tool.NewKnowledgeSearcher(cfg.AISearchEndpoint, cfg.AISearchKnowledgeBase,
			tool.WithAPIKey(cfg.AISearchAPIKey),
			tool.WithDefaultEffort(cfg.AISearchReasoningEffort),
		)
		agentOpts = append(agentOpts, agent.WithKnowledgeSearcher(knowledge))
		log.Infof("knowledge base tool enabled (endpoint=%s, kb=%s)",
			cfg.AISearchEndpoint, cfg.AISearchKnowledgeBase)
	} else {
		log.Infof("AI_SEARCH_* not configured, search_knowledge_base tool disabled")
	}
	runner := agent.New(client, cfg.ModelName, agentOpts...)

	srv := server.New(runner, conversations,
		server.WithImageGenerator(images),
		server.WithAllowedOrigins(cfg.AllowedOrigins),
	)

	httpSrv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Handler(),
	}

	go func() {
		log.Infof("listening on %s (model=%s)", cfg.Addr(), cfg.ModelName)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

// buildConversationService picks the storage backend: the document store
// when configured, wrapped so a storage outage degrades to in-memory
// persistence instead of failing turns.
func buildConversationService(ctx context.Context, cfg *config.Config) conversation.Service {
	memory := inmemory.New()
	if cfg.MongoURI == "" {
		log.Infof("MONGO_URI not set, using in-memory conversation store")
		return memory
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := mongodb.New(connectCtx,
		mongodb.WithURI(cfg.MongoURI),
		mongodb.WithDatabase(cfg.MongoDatabase),
		mongodb.WithCollection(cfg.MongoCollection),
	)
	if err != nil {
		log.Warnf("document store unavailable, falling back to in-memory: %v", err)
		return memory
	}
	log.Infof("conversation store: mongodb (db=%s, collection=%s)", cfg.MongoDatabase, cfg.MongoCollection)
	return conversation.NewDegrading(store, memory)
}
