package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/agenthands/talentgraph/internal/config"
	"github.com/agenthands/talentgraph/internal/core"
	"github.com/agenthands/talentgraph/internal/core/ingest"
	"github.com/agenthands/talentgraph/internal/core/model"
	"github.com/agenthands/talentgraph/internal/core/resolve"
	"github.com/agenthands/talentgraph/internal/driver"
	"github.com/agenthands/talentgraph/internal/index"
	"github.com/agenthands/talentgraph/internal/llm"
	"github.com/agenthands/talentgraph/internal/store"
)

type Server struct {
	Engine   *core.Engine
	Ingestor *ingest.Ingestor
	Logger   *zap.Logger
}

// NewServer wires the storage, index and llm layers from configuration.
// Without a Memgraph URI or Postgres DSN it falls back to the in-memory
// store/index, which is enough for local exploration.
func NewServer(logger *zap.Logger) *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("could not load config file, using defaults", zap.String("path", cfgPath), zap.Error(err))
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	ctx := context.Background()

	var graphStore store.Store
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			logger.Fatal("failed to connect to memgraph", zap.Error(err))
		}
		if err := d.BuildIndices(ctx); err != nil {
			logger.Warn("failed to build graph indices", zap.Error(err))
		}
		graphStore = store.NewMemgraphStore(d)
	} else {
		logger.Info("no memgraph uri configured, using in-memory store")
		graphStore = store.NewMemoryStore()
	}

	var vectorIndex index.Index
	if cfg.Postgres.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		pg := index.NewPgIndex(pool, cfg.LLM.EmbeddingDim)
		pg.SimilarityFloor = cfg.Retrieval.SimilarityFloor
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to ensure index schema", zap.Error(err))
		}
		vectorIndex = pg
	} else {
		logger.Info("no postgres dsn configured, using in-memory index")
		mem := index.NewMemoryIndex()
		mem.SimilarityFloor = cfg.Retrieval.SimilarityFloor
		vectorIndex = mem
	}

	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		logger.Fatal("failed to initialize llm client", zap.Error(err))
	}
	if embedder == nil {
		logger.Warn("provider has no embedding support, vector branch will degrade",
			zap.String("provider", cfg.LLM.Provider))
	}

	resolver := resolve.NewResolver(graphStore, cfg.Resolve)
	tuning := core.TuningFromConfig(cfg.Retrieval)
	engine := core.NewEngine(graphStore, vectorIndex, embedder, resolver, tuning, logger)

	ingestor := ingest.NewIngestor(graphStore, vectorIndex, embedder, cfg.Ingest, logger)
	if cfg.Prompts.Mentions != "" {
		ingestor.Tagger = ingest.NewMentionTagger(graphStore, resolver, llmClient, cfg.Prompts.Mentions)
	}
	if cfg.Prompts.Summary != "" {
		ingestor.Summary = ingest.NewSummarizer(llmClient, cfg.Prompts.Summary)
	}

	return &Server{Engine: engine, Ingestor: ingestor, Logger: logger}
}

func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		cfg.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		cfg.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		cfg.Memgraph.Password = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/search", s.Search)
	r.POST("/ingest/entities", s.IngestEntities)
	r.POST("/ingest/chunks", s.IngestChunks)

	return r
}

func (s *Server) Search(c *gin.Context) {
	var q model.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	results, err := s.Engine.Search(c.Request.Context(), q)
	switch {
	case errors.Is(err, core.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, core.ErrRetrievalUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		s.Logger.Error("search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	// Zero matches is a valid result, not an error.
	if results == nil {
		results = []model.MatchResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type IngestEntitiesRequest struct {
	Entities      []model.Entity       `json:"entities"`
	Relationships []model.Relationship `json:"relationships"`
}

func (s *Server) IngestEntities(c *gin.Context) {
	var req IngestEntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	stats, err := s.Ingestor.IngestBatch(c.Request.Context(), req.Entities, req.Relationships)
	if err != nil {
		s.Logger.Error("ingestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed", "stats": stats})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": stats})
}

type IngestChunksRequest struct {
	Chunks []struct {
		model.Chunk
		CandidateID string `json:"candidate_id"`
	} `json:"chunks"`
}

func (s *Server) IngestChunks(c *gin.Context) {
	var req IngestChunksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	records := make([]ingest.ChunkRecord, 0, len(req.Chunks))
	for _, ch := range req.Chunks {
		records = append(records, ingest.ChunkRecord{Chunk: ch.Chunk, OwnerCandidateID: ch.CandidateID})
	}
	if err := s.Ingestor.UpsertChunks(c.Request.Context(), records); err != nil {
		s.Logger.Error("chunk ingestion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chunk ingestion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(req.Chunks)})
}
