package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/deckhand/coalesce/internal/config"
	"github.com/deckhand/coalesce/internal/core"
	"github.com/deckhand/coalesce/internal/core/model"
	"github.com/deckhand/coalesce/internal/driver"
	"github.com/deckhand/coalesce/internal/llm"
)

type Server struct {
	Engine *core.Engine
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// A missing default file is fine; anything else (bad TOML, bad
		// values, explicit CONFIG_PATH) is fatal.
		if os.Getenv("CONFIG_PATH") != "" || !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = &config.Config{Dedup: config.DefaultDedupConfig()}
	}

	// Env vars win over the config file.
	if envURI := os.Getenv("MEMGRAPH_URI"); envURI != "" {
		cfg.Memgraph.URI = envURI
	}
	if envUser := os.Getenv("MEMGRAPH_USER"); envUser != "" {
		cfg.Memgraph.User = envUser
	}
	if envPass := os.Getenv("MEMGRAPH_PASSWORD"); envPass != "" {
		cfg.Memgraph.Password = envPass
	}
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envEmbeddingModel := os.Getenv("LLM_EMBEDDING_MODEL"); envEmbeddingModel != "" {
		cfg.LLM.EmbeddingModel = envEmbeddingModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}
	if cfg.Memgraph.URI == "" {
		cfg.Memgraph.URI = "bolt://localhost:7687"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.EmbeddingModel = "nomic-embed-text"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	store, err := driver.NewMemgraphStore(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}

	embedder, err := llm.NewEmbedder(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize embedder: %v", err)
	}

	engine, err := core.NewEngine(store, embedder, cfg.Dedup)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}

	return &Server{Engine: engine}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/deduplicate", s.Deduplicate)
	r.POST("/validate", s.Validate)
	r.GET("/health", s.Health)

	return r
}

type CardBatchRequest struct {
	Cards []model.Card `json:"cards"`
}

func (s *Server) Deduplicate(c *gin.Context) {
	var req CardBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Upstream generators occasionally omit ids; assign them here so
	// the engine's id-uniqueness invariant holds.
	for i := range req.Cards {
		if req.Cards[i].ID == "" {
			req.Cards[i].ID = uuid.New().String()
		}
	}

	final, stats, err := s.Engine.DeduplicateCards(c.Request.Context(), req.Cards)
	if err != nil {
		log.Printf("Failed to deduplicate cards: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deduplicate cards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cards": final, "stats": stats})
}

func (s *Server) Validate(c *gin.Context) {
	var req CardBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, err := s.Engine.ValidateQuality(c.Request.Context(), req.Cards)
	if err != nil {
		log.Printf("Failed to validate cards: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate cards"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
